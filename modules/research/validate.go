package research

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Blog length targets.
const (
	MinTitleLength = 50
	MaxTitleLength = 70
	MinMetaLength  = 140
	MaxMetaLength  = 160
	MinWordCount   = 550
	MaxWordCount   = 750
)

// RequiredSections are the <h2> headings every blog must carry.
var RequiredSections = []string{
	"Key Takeaways",
	"Business Overview and Financials",
	"Insolvency Overview",
	"Reasons for Financial Distress",
	"Learning Points for Distressed Business Buyers",
	"FAQ for Strategic Buyers",
}

var aiPhrases = []string{
	"it's worth noting",
	"dive deeper",
	"delve into",
	"leverage",
	"unlock",
	"holistic",
	"synergy",
	"robust",
	"seamless",
}

// Validation reports structural problems in a generated blog. Errors mean
// a required element is missing; warnings flag soft targets.
type Validation struct {
	Valid           bool     `json:"passed"`
	WordCount       int      `json:"-"`
	Warnings        []string `json:"warnings"`
	Errors          []string `json:"errors"`
	Title           *string  `json:"-"`
	MetaDescription *string  `json:"-"`
}

// ValidateBlog checks an HTML blog for its title, meta description,
// required sections, body length and stock AI phrasing.
func ValidateBlog(blog string) Validation {
	v := Validation{Warnings: []string{}, Errors: []string{}}

	doc, err := html.Parse(strings.NewReader(blog))
	if err != nil {
		v.Errors = append(v.Errors, fmt.Sprintf("Unparseable HTML: %v", err))
		return v
	}

	var (
		sections = map[string]bool{}
		words    int
		metaSeen bool
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.H1:
				if v.Title == nil {
					t := textOf(n)
					v.Title = &t
				}
				return
			case atom.H2:
				sections[strings.TrimSpace(textOf(n))] = true
				return
			case atom.H3, atom.H4, atom.H5, atom.H6:
				return
			case atom.P:
				switch {
				case hasClass(n, "meta-description") && !metaSeen:
					metaSeen = true
					t := textOf(n)
					v.MetaDescription = &t
					return
				case hasClass(n, "footer-meta"):
					return
				}
			}
		}
		if n.Type == html.TextNode {
			words += len(strings.Fields(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if v.Title == nil {
		v.Errors = append(v.Errors, "Missing title (<h1> tag)")
	} else if n := utf8.RuneCountInString(*v.Title); n < MinTitleLength || n > MaxTitleLength {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Title length %d chars (target: 55-60)", n))
	}

	if v.MetaDescription == nil {
		v.Errors = append(v.Errors, `Missing meta description (<p class="meta-description">)`)
	} else if n := utf8.RuneCountInString(*v.MetaDescription); n < MinMetaLength || n > MaxMetaLength {
		v.Warnings = append(v.Warnings, fmt.Sprintf("Meta description %d chars (target: 150-155)", n))
	}

	for _, s := range RequiredSections {
		if !sections[s] {
			v.Errors = append(v.Errors, "Missing required section: "+s)
		}
	}

	v.WordCount = words
	switch {
	case words < MinWordCount:
		v.Warnings = append(v.Warnings, fmt.Sprintf("Word count %d below minimum (%d)", words, MinWordCount))
	case words > MaxWordCount:
		v.Warnings = append(v.Warnings, fmt.Sprintf("Word count %d above maximum (%d)", words, MaxWordCount))
	}

	lower := strings.ToLower(blog)
	for _, phrase := range aiPhrases {
		if strings.Contains(lower, phrase) {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Contains AI phrase: %q", phrase))
		}
	}

	v.Valid = len(v.Errors) == 0
	return v
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, c := range strings.Fields(a.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

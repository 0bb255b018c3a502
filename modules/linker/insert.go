package linker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMaxLinks is used when InsertLinks is given a non-positive limit.
	DefaultMaxLinks = 5
	// maxConsidered caps the diagnostic list when nothing qualified.
	maxConsidered = 10
)

// Result is the outcome of one insertion pass.
type Result struct {
	Document   string       `json:"document"`
	LinksAdded int          `json:"linksAdded"`
	Considered []ScoredLink `json:"linksConsidered"`
}

// InsertLinks hyperlinks up to maxLinks of the most relevant links into
// markdown. Each selected link wraps the first eligible occurrence of its
// primary keyword (or, failing that, of the keyword's first word). Headings
// and text that is already inside a link are never eligible.
//
// Links are applied one after another, and each search runs against the
// document as rewritten by the links before it.
func InsertLinks(markdown string, links []Link, maxLinks int) (Result, error) {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}
	if len(links) == 0 {
		return Result{Document: markdown}, nil
	}

	terms, err := ExtractTerms(markdown)
	if err != nil {
		return Result{}, err
	}

	scored := ScoreLinks(links, terms)
	selected := Rank(scored)
	if len(selected) > maxLinks {
		selected = selected[:maxLinks]
	}
	if len(selected) == 0 {
		considered := scored
		if len(considered) > maxConsidered {
			considered = considered[:maxConsidered]
		}
		return Result{Document: markdown, Considered: considered}, nil
	}

	doc := markdown
	added := 0
	for _, link := range selected {
		var ok bool
		if doc, ok = insertLink(doc, link.Link); ok {
			added++
		}
	}

	return Result{
		Document:   doc,
		LinksAdded: added,
		Considered: selected,
	}, nil
}

// insertLink rewrites the first eligible occurrence of link's primary
// keyword, falling back to its first word. It reports whether doc changed.
func insertLink(doc string, link Link) (string, bool) {
	keyword := strings.TrimSpace(link.PrimaryKeyword())
	if keyword == "" || link.URL == "" {
		return doc, false
	}

	start, end, found := findEligible(doc, keyword)
	if !found {
		fields := strings.Fields(keyword)
		if len(fields) > 1 {
			start, end, found = findEligible(doc, fields[0])
		}
	}
	if !found {
		return doc, false
	}

	original := doc[start:end]
	return doc[:start] + "[" + original + "](" + link.URL + ")" + doc[end:], true
}

// findEligible returns the byte span of the first case-insensitive match of
// phrase that is outside headings and existing links.
func findEligible(doc, phrase string) (start, end int, found bool) {
	for from := 0; from < len(doc); {
		start, end, found = indexFold(doc, phrase, from)
		if !found {
			return 0, 0, false
		}
		if !isInHeading(doc, start) && !isAlreadyLinked(doc, start) {
			return start, end, true
		}
		_, size := utf8.DecodeRuneInString(doc[start:])
		from = start + size
	}
	return 0, 0, false
}

// indexFold finds phrase in s at or after byte offset from, comparing
// runes case-insensitively. The returned span is in s's bytes, which may
// differ in length from phrase.
func indexFold(s, phrase string, from int) (start, end int, found bool) {
	if phrase == "" {
		return 0, 0, false
	}
	for i := from; i < len(s); {
		if e, ok := hasPrefixFold(s[i:], phrase); ok {
			return i, i + e, true
		}
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return 0, 0, false
}

func hasPrefixFold(s, prefix string) (int, bool) {
	n := 0
	for _, pr := range prefix {
		if n >= len(s) {
			return 0, false
		}
		sr, size := utf8.DecodeRuneInString(s[n:])
		if sr != pr && unicode.ToLower(sr) != unicode.ToLower(pr) {
			return 0, false
		}
		n += size
	}
	return n, true
}

// isInHeading reports whether pos sits on a markdown heading line.
func isInHeading(doc string, pos int) bool {
	lineStart := strings.LastIndexByte(doc[:pos], '\n') + 1
	lineEnd := len(doc)
	if i := strings.IndexByte(doc[pos:], '\n'); i >= 0 {
		lineEnd = pos + i
	}
	line := strings.TrimSpace(doc[lineStart:lineEnd])

	hashes := 0
	for hashes < len(line) && line[hashes] == '#' {
		hashes++
	}
	return hashes >= 1 && hashes <= 6 && hashes < len(line) && isSpace(line[hashes])
}

// isAlreadyLinked reports whether pos falls inside a [text](url) span,
// target included. The opening bracket is only looked for on the same line.
func isAlreadyLinked(doc string, pos int) bool {
	bracket := -1
	for i := pos; i >= 0; i-- {
		if doc[i] == '[' {
			bracket = i
			break
		}
		if doc[i] == '\n' {
			break
		}
	}
	if bracket < 0 {
		return false
	}

	closeBracket := strings.Index(doc[bracket:], "](")
	if closeBracket < 0 {
		return false
	}
	closeBracket += bracket

	closeParen := strings.IndexByte(doc[closeBracket:], ')')
	if closeParen < 0 {
		return false
	}
	closeParen += closeBracket
	return pos >= bracket && pos <= closeParen
}

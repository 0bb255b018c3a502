package linker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidInput is returned for text that cannot be tokenized.
var ErrInvalidInput = errors.New("invalid input")

// stopwords never count as terms. The list is fixed; changing it changes scores.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "can", "had",
		"her", "was", "one", "our", "out", "day", "get", "has", "him", "his",
		"how", "man", "new", "now", "old", "see", "two", "way", "who", "boy",
		"did", "its", "let", "put", "say", "she", "too", "use", "will", "than",
		"this", "that", "with", "what", "when", "where", "which", "about", "would",
		"there", "their", "these", "those", "been", "have", "from", "they", "more",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether w is ignored by ExtractTerms.
func IsStopword(w string) bool {
	_, ok := stopwords[w]
	return ok
}

// ExtractTerms turns markdown into the ordered list of lowercase terms used
// for relevance scoring: headings markers, link targets and emphasis are
// dropped, then every run of two or more ASCII letters that is not glued to
// a digit or letter-like word character becomes a term unless it is a stopword.
func ExtractTerms(markdown string) ([]string, error) {
	if !utf8.ValidString(markdown) {
		return nil, fmt.Errorf("extract terms: %w: text is not valid UTF-8", ErrInvalidInput)
	}

	clean := strings.ToLower(stripEmphasis(replaceLinks(stripHeadingMarkers(markdown))))

	var terms []string
	for _, word := range wordRuns(clean) {
		if len(word) < 2 || !isLowerAlpha(word) {
			continue
		}
		if IsStopword(word) {
			continue
		}
		terms = append(terms, word)
	}
	return terms, nil
}

// stripHeadingMarkers removes every "#{1,6}" followed by one whitespace
// character, wherever it occurs.
func stripHeadingMarkers(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] != '#' {
			b.WriteByte(s[i])
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == '#' {
			j++
		}
		run := j - i
		// A run longer than six still matches on its last six hashes.
		if j < len(s) && isSpace(s[j]) {
			keep := run - 6
			if keep < 0 {
				keep = 0
			}
			b.WriteString(s[i : i+keep])
			i = j + 1
			continue
		}
		b.WriteString(s[i:j])
		i = j
	}
	return b.String()
}

// replaceLinks rewrites [text](target) as text. Text must be non-empty and
// free of ']', target non-empty and free of ')'.
func replaceLinks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '[' {
			if text, next, ok := matchLink(s, i); ok {
				b.WriteString(text)
				i = next
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func matchLink(s string, start int) (text string, next int, ok bool) {
	closeText := strings.IndexByte(s[start+1:], ']')
	if closeText <= 0 {
		return "", 0, false
	}
	closeText += start + 1
	if closeText+1 >= len(s) || s[closeText+1] != '(' {
		return "", 0, false
	}
	closeURL := strings.IndexByte(s[closeText+2:], ')')
	if closeURL <= 0 {
		return "", 0, false
	}
	return s[start+1 : closeText], closeText + 2 + closeURL + 1, true
}

func stripEmphasis(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '*', '_', '`':
			return -1
		}
		return r
	}, s)
}

// wordRuns splits s into maximal runs of ASCII word characters.
func wordRuns(s string) []string {
	var runs []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isWordByte(s[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, s[start:])
	}
	return runs
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isLowerAlpha(w string) bool {
	for i := 0; i < len(w); i++ {
		if w[i] < 'a' || w[i] > 'z' {
			return false
		}
	}
	return true
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

package linker

import (
	"sort"
	"strings"
)

const (
	phraseBonus = 3
	wordBonus   = 1
)

// Link is one entry of the internal link database. The first keyword is
// the primary one and is what gets hyperlinked in the document.
type Link struct {
	URL      string   `json:"url" yaml:"url"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// PrimaryKeyword returns the first keyword, or "" when there are none.
func (l Link) PrimaryKeyword() string {
	if len(l.Keywords) == 0 {
		return ""
	}
	return l.Keywords[0]
}

// ScoredLink is a Link ranked against one document.
type ScoredLink struct {
	Link
	Score int `json:"score"`
}

// Score rates how relevant link is to a document's terms. Per keyword
// phrase: +3 when a multi-word phrase appears as consecutive terms, and +1
// for each phrase word found anywhere in the terms.
func Score(link Link, terms []string) int {
	return scoreWithSet(link, terms, termSet(terms))
}

func scoreWithSet(link Link, terms []string, set map[string]struct{}) int {
	score := 0
	for _, keyword := range link.Keywords {
		words := strings.Fields(strings.ToLower(keyword))
		if len(words) > 1 && containsSequence(terms, words) {
			score += phraseBonus
		}
		for _, w := range words {
			if _, ok := set[w]; ok {
				score += wordBonus
			}
		}
	}
	return score
}

// ScoreLinks scores every link against terms, keeping database order.
func ScoreLinks(links []Link, terms []string) []ScoredLink {
	set := termSet(terms)
	scored := make([]ScoredLink, len(links))
	for i, l := range links {
		scored[i] = ScoredLink{Link: l, Score: scoreWithSet(l, terms, set)}
	}
	return scored
}

// Rank returns the links with a positive score, best first. Equal scores
// keep their database order.
func Rank(scored []ScoredLink) []ScoredLink {
	ranked := make([]ScoredLink, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			ranked = append(ranked, s)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// containsSequence reports whether phrase occurs as a contiguous run in
// terms. Start positions stop where the phrase would overrun the end.
func containsSequence(terms, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(terms) {
		return false
	}
	for i := 0; i+len(phrase) <= len(terms); i++ {
		match := true
		for j, w := range phrase {
			if terms[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func termSet(terms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

package linker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guarzo/gazettefeed/modules/linker"
)

func TestScore(t *testing.T) {
	terms := []string{"distressed", "business", "buyers", "guide"}

	tests := []struct {
		name     string
		keywords []string
		want     int
	}{
		{"phrase bonus plus words", []string{"distressed business buyers"}, 6},
		{"only one word present", []string{"distressed seller"}, 1},
		{"single word keyword", []string{"guide"}, 1},
		{"case insensitive keyword", []string{"Distressed Business"}, 5},
		{"words out of order", []string{"buyers distressed"}, 2},
		{"sum over keywords", []string{"buyers guide", "buyers", "nothing here"}, 5 + 1},
		{"no overlap", []string{"pre-pack administration"}, 0},
		{"no keywords", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := linker.Score(linker.Link{URL: "https://example.com", Keywords: tt.keywords}, terms)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_PhraseNeverOverrunsTerms(t *testing.T) {
	// "business buyers" would need a term after the last one
	terms := []string{"distressed", "business"}
	got := linker.Score(linker.Link{Keywords: []string{"business buyers"}}, terms)
	assert.Equal(t, 1, got)

	// phrase ending exactly at the last term still counts
	got = linker.Score(linker.Link{Keywords: []string{"distressed business"}}, terms)
	assert.Equal(t, 5, got)

	// phrase longer than the whole document
	got = linker.Score(linker.Link{Keywords: []string{"distressed business buyers guide"}}, terms)
	assert.Equal(t, 2, got)
}

func TestScore_WordCountedOncePerPhrase(t *testing.T) {
	terms := []string{"insolvency", "insolvency", "insolvency"}
	got := linker.Score(linker.Link{Keywords: []string{"insolvency"}}, terms)
	assert.Equal(t, 1, got)
}

func TestRank(t *testing.T) {
	scored := []linker.ScoredLink{
		{Link: linker.Link{URL: "a"}, Score: 1},
		{Link: linker.Link{URL: "b"}, Score: 0},
		{Link: linker.Link{URL: "c"}, Score: 4},
		{Link: linker.Link{URL: "d"}, Score: 1},
		{Link: linker.Link{URL: "e"}, Score: 4},
	}

	ranked := linker.Rank(scored)

	var urls []string
	for _, r := range ranked {
		urls = append(urls, r.URL)
	}
	assert.Equal(t, []string{"c", "e", "a", "d"}, urls)
}

func TestScoreLinks_KeepsOrder(t *testing.T) {
	links := []linker.Link{
		{URL: "x", Keywords: []string{"buyers"}},
		{URL: "y", Keywords: []string{"sellers"}},
	}
	scored := linker.ScoreLinks(links, []string{"buyers"})
	assert.Len(t, scored, 2)
	assert.Equal(t, "x", scored[0].URL)
	assert.Equal(t, 1, scored[0].Score)
	assert.Equal(t, 0, scored[1].Score)
}

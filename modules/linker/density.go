package linker

import (
	"math"
	"strconv"
	"strings"
)

// Target band for a primary keyword, in percent of words.
const (
	MinTargetDensity = 0.5
	MaxTargetDensity = 2.0
)

// Density describes how often a keyword appears in a text.
type Density struct {
	Count        int        `json:"count"`
	Words        int        `json:"words"`
	Percent      float64    `json:"percent"`
	Formatted    string     `json:"density"`
	TargetRange  [2]float64 `json:"targetRange"`
	WithinTarget bool       `json:"withinTarget"`
}

// KeywordDensity counts case-insensitive, non-overlapping occurrences of
// keyword in text and relates them to the number of whitespace-separated
// words.
func KeywordDensity(text, keyword string) Density {
	d := Density{
		Words:       len(strings.Fields(text)),
		TargetRange: [2]float64{MinTargetDensity, MaxTargetDensity},
	}
	if keyword != "" {
		d.Count = strings.Count(strings.ToLower(text), strings.ToLower(keyword))
	}
	if d.Words > 0 {
		d.Percent = float64(d.Count) / float64(d.Words) * 100
	}
	d.Formatted = strconv.FormatFloat(math.Round(d.Percent*100)/100, 'f', 2, 64)
	d.WithinTarget = d.Percent >= MinTargetDensity && d.Percent <= MaxTargetDensity
	return d
}

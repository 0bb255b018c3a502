package companieshouse

import (
	"bytes"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/guarzo/gazettefeed/common/model"
)

// Tag groups in priority order. Within a group the last tagged value in the
// document wins, which for UK filings is normally the current year column.
var (
	netAssetsTags = [][]string{
		{"NetAssetsLiabilities", "TotalNetAssets", "NetAssets"},
		{"TotalAssetsLessCurrentLiabilities"},
	}
	totalAssetsTags = [][]string{
		{"TotalAssets", "FixedAssetsPlusCurrentAssets"},
	}
	currentAssetsTags = [][]string{
		{"CurrentAssets", "TotalCurrentAssets"},
	}
	fixedAssetsTags = [][]string{
		{"FixedAssets", "TotalFixedAssets", "TangibleFixedAssets"},
	}
	liabilitiesTags = [][]string{
		{"CreditorsDueWithinOneYear", "CurrentLiabilities"},
		{"TotalCreditors", "TotalLiabilities"},
	}
)

var netAssetsText = regexp.MustCompile(`(?i)(?:net\s*assets|total\s*assets\s*less\s*current\s*liabilities)[^£$\d]*[£$]?\s*([\d,]+)`)

type taggedValue struct {
	concept string
	value   float64
}

// ParseAccounts extracts balance sheet figures from an inline XBRL accounts
// document. It returns nil when no figure could be found.
func ParseAccounts(doc []byte) (*model.Financials, error) {
	values, text, err := scanDocument(doc)
	if err != nil {
		return nil, err
	}

	fin := &model.Financials{
		NetAssets:     pick(values, netAssetsTags),
		TotalAssets:   pick(values, totalAssetsTags),
		CurrentAssets: pick(values, currentAssetsTags),
		FixedAssets:   pick(values, fixedAssetsTags),
		Liabilities:   pick(values, liabilitiesTags),
	}

	if fin.NetAssets == nil && fin.TotalAssets == nil {
		if m := netAssetsText.FindStringSubmatch(text); m != nil {
			if v, ok := parseNumber(m[1]); ok {
				fin.NetAssets = &v
			}
		}
	}

	if fin.NetAssets == nil && fin.TotalAssets == nil && fin.CurrentAssets == nil &&
		fin.FixedAssets == nil && fin.Liabilities == nil {
		return nil, nil
	}

	fin.NetAssetsFormatted = formatPtr(fin.NetAssets)
	fin.TotalAssetsFormatted = formatPtr(fin.TotalAssets)
	fin.CurrentAssetsFormatted = formatPtr(fin.CurrentAssets)
	fin.FixedAssetsFormatted = formatPtr(fin.FixedAssets)
	fin.LiabilitiesFormatted = formatPtr(fin.Liabilities)
	return fin, nil
}

// scanDocument walks the token stream once, collecting every
// ix:nonFraction value and the document's visible text.
func scanDocument(doc []byte) ([]taggedValue, string, error) {
	z := html.NewTokenizer(bytes.NewReader(doc))

	var (
		values []taggedValue
		text   strings.Builder

		inFact  bool
		depth   int
		concept string
		sign    float64
		scale   int
		factBuf strings.Builder
	)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return values, text.String(), nil
			}
			return nil, "", z.Err()

		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if inFact {
				depth++
				continue
			}
			if string(name) != "ix:nonfraction" || !hasAttr {
				continue
			}
			concept, sign, scale = "", 1, 0
			for {
				key, val, more := z.TagAttr()
				switch string(key) {
				case "name":
					concept = localName(string(val))
				case "sign":
					if string(val) == "-" {
						sign = -1
					}
				case "scale":
					scale, _ = strconv.Atoi(string(val))
				}
				if !more {
					break
				}
			}
			inFact, depth = true, 0
			factBuf.Reset()

		case html.EndTagToken:
			if !inFact {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			inFact = false
			if v, ok := parseNumber(factBuf.String()); ok && concept != "" {
				values = append(values, taggedValue{
					concept: concept,
					value:   sign * v * math.Pow10(scale),
				})
			}

		case html.TextToken:
			t := z.Text()
			if inFact {
				factBuf.Write(t)
			}
			text.Write(t)
			text.WriteByte(' ')
		}
	}
}

// pick returns the last value whose concept is in the first group that has
// any match.
func pick(values []taggedValue, groups [][]string) *float64 {
	for _, group := range groups {
		for i := len(values) - 1; i >= 0; i-- {
			for _, c := range group {
				if values[i].concept == c {
					v := values[i].value
					return &v
				}
			}
		}
	}
	return nil
}

func localName(name string) string {
	if i := strings.LastIndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}

func parseNumber(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatPtr(v *float64) *string {
	if v == nil {
		return nil
	}
	s := FormatCurrency(*v)
	return &s
}

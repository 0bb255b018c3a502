package research

import (
	"regexp"
	"strings"

	"github.com/guarzo/gazettefeed/modules/companieshouse"
)

// KeywordData is the SEO keyword plan for one draft.
type KeywordData struct {
	Primary   PrimaryKeyword `json:"primary"`
	Secondary []string       `json:"secondary"`
	Related   []string       `json:"related"`
	Industry  string         `json:"industry"`
}

type PrimaryKeyword struct {
	Keyword     string `json:"keyword"`
	Volume      *int   `json:"volume"`
	Competition *int   `json:"competition"`
	Source      string `json:"source"`
}

var relatedTerms = []string{
	"administration process UK",
	"insolvency practitioners",
	"company rescue",
	"distressed M&A",
	"business insolvency",
	"creditors voluntary liquidation",
	"pre-pack administration",
	"asset acquisition",
	"distressed business buyers",
	"insolvency notice UK",
}

var (
	windingUp     = regexp.MustCompile(`(?i)winding.?up`)
	petition      = regexp.MustCompile(`(?i)petition`)
	industryNoise = regexp.MustCompile(`(?i)activities?|services?|support|other`)
)

// NormalizeNoticeType folds a notice label into the term people search
// for, e.g. "Winding Up Petition" becomes "liquidation".
func NormalizeNoticeType(noticeType string) string {
	t := strings.ToLower(noticeType)
	if loc := windingUp.FindStringIndex(t); loc != nil {
		t = t[:loc[0]] + "liquidation" + t[loc[1]:]
	}
	if loc := petition.FindStringIndex(t); loc != nil {
		t = t[:loc[0]] + t[loc[1]:]
	}
	t = strings.TrimSpace(t)
	if t == "" {
		return "administration"
	}
	return t
}

// Industry derives a one-word industry from the company's first SIC code,
// defaulting to "business".
func Industry(sicCodes []string) string {
	if len(sicCodes) == 0 || !companieshouse.KnownSIC(sicCodes[0]) {
		return "business"
	}
	desc := strings.ToLower(companieshouse.SICDescription(sicCodes[0]))
	desc = industryNoise.ReplaceAllString(desc, "")
	for _, term := range strings.Fields(desc) {
		if len(term) > 3 {
			return term
		}
	}
	return "business"
}

// FallbackKeywords builds a keyword plan from the company name, notice
// type and industry alone.
func FallbackKeywords(companyName, noticeType string, sicCodes []string) KeywordData {
	normalized := NormalizeNoticeType(noticeType)
	industry := Industry(sicCodes)

	return KeywordData{
		Primary: PrimaryKeyword{
			Keyword: companyName + " " + normalized,
			Source:  "fallback",
		},
		Secondary: []string{
			companyName + " insolvency",
			companyName + " liquidation",
			normalized + " " + industry + " UK",
		},
		Related:  append([]string(nil), relatedTerms...),
		Industry: industry,
	}
}

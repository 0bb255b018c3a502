package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSONUnmarshal is the one place upstream payloads are decoded.
func JSONUnmarshal(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode JSON: %w", err)
	}
	return nil
}

// ---------------------------------------------------
// Gazette
// ---------------------------------------------------

// GazetteFeed is one page of the insolvency notice feed.
type GazetteFeed struct {
	Total   string         `json:"f:total"`
	Entries []GazetteEntry `json:"entry"`
}

type GazetteEntry struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	Published  string          `json:"published"`
	Updated    string          `json:"updated"`
	NoticeCode FlexString      `json:"f:notice-code"`
	Category   GazetteCategory `json:"category"`
	Links      []GazetteLink   `json:"link"`
}

type GazetteLink struct {
	Href string `json:"@href"`
	Rel  string `json:"@rel"`
	Type string `json:"@type"`
}

// GazetteCategory is either {"@term": "..."} or a bare string in the feed.
type GazetteCategory struct {
	Term string
}

func (c *GazetteCategory) UnmarshalJSON(data []byte) error {
	var obj struct {
		Term string `json:"@term"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		c.Term = obj.Term
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	c.Term = s
	return nil
}

// FlexString accepts a JSON string or number.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(strings.TrimSpace(string(data)))
	return nil
}

// Notice is the dashboard view of a Gazette entry.
type Notice struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Published  string `json:"published"`
	Updated    string `json:"updated"`
	NoticeCode string `json:"noticeCode"`
	NoticeType string `json:"noticeType"`
	Category   string `json:"category"`
	Link       string `json:"link"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// NoticeListing is what the notices endpoint serves and caches.
type NoticeListing struct {
	Notices        []Notice  `json:"notices"`
	Fetched        string    `json:"fetched"`
	Total          int       `json:"total"`
	DateRange      DateRange `json:"dateRange"`
	TotalInGazette int       `json:"totalInGazette"`

	Cached      bool   `json:"cached"`
	CacheAge    int    `json:"cacheAge"`
	NextRefresh int    `json:"nextRefresh"`
	Stale       bool   `json:"stale,omitempty"`
	Error       string `json:"error,omitempty"`
}

// ---------------------------------------------------
// Companies House
// ---------------------------------------------------

type CompanySearchResult struct {
	Items []CompanySearchItem `json:"items"`
}

type CompanySearchItem struct {
	Title         string `json:"title"`
	CompanyNumber string `json:"company_number"`
	CompanyStatus string `json:"company_status"`
}

type Address struct {
	Premises     string `json:"premises"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	Locality     string `json:"locality"`
	Region       string `json:"region"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

// Lines returns the non-empty address parts in display order.
func (a *Address) Lines(withCountry bool) []string {
	if a == nil {
		return nil
	}
	parts := []string{a.Premises, a.AddressLine1, a.AddressLine2, a.Locality, a.Region, a.PostalCode}
	if withCountry {
		parts = append(parts, a.Country)
	}
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type CompanyProfile struct {
	CompanyName             string   `json:"company_name"`
	CompanyNumber           string   `json:"company_number"`
	CompanyStatus           string   `json:"company_status"`
	Type                    string   `json:"type"`
	DateOfCreation          string   `json:"date_of_creation"`
	DateOfCessation         string   `json:"date_of_cessation"`
	RegisteredOfficeAddress *Address `json:"registered_office_address"`
	SICCodes                []string `json:"sic_codes"`
}

type OfficerList struct {
	Items []Officer `json:"items"`
}

type Officer struct {
	Name        string `json:"name"`
	OfficerRole string `json:"officer_role"`
	AppointedOn string `json:"appointed_on"`
	ResignedOn  string `json:"resigned_on"`
	Occupation  string `json:"occupation"`
}

type PSCList struct {
	Items []PSC `json:"items"`
}

type NameElements struct {
	Forename string `json:"forename"`
	Surname  string `json:"surname"`
}

type PSC struct {
	Name             string        `json:"name"`
	NameElements     *NameElements `json:"name_elements"`
	NaturesOfControl []string      `json:"natures_of_control"`
	NotifiedOn       string        `json:"notified_on"`
}

// DisplayName prefers the registered name and falls back to name elements.
func (p PSC) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.NameElements != nil {
		if n := strings.TrimSpace(p.NameElements.Forename + " " + p.NameElements.Surname); n != "" {
			return n
		}
	}
	return "Unknown"
}

type FilingHistory struct {
	Items []Filing `json:"items"`
}

type Filing struct {
	TransactionID string `json:"transaction_id"`
	Date          string `json:"date"`
	Description   string `json:"description"`
	Category      string `json:"category"`
}

// Financials holds balance sheet figures pulled from an accounts document.
// Nil fields were not found.
type Financials struct {
	NetAssets              *float64 `json:"netAssets"`
	NetAssetsFormatted     *string  `json:"netAssetsFormatted"`
	TotalAssets            *float64 `json:"totalAssets"`
	TotalAssetsFormatted   *string  `json:"totalAssetsFormatted"`
	CurrentAssets          *float64 `json:"currentAssets"`
	CurrentAssetsFormatted *string  `json:"currentAssetsFormatted"`
	FixedAssets            *float64 `json:"fixedAssets,omitempty"`
	FixedAssetsFormatted   *string  `json:"fixedAssetsFormatted,omitempty"`
	Liabilities            *float64 `json:"liabilities"`
	LiabilitiesFormatted   *string  `json:"liabilitiesFormatted"`
}

// FinancialData pairs parsed figures with the accounts they came from.
type FinancialData struct {
	Financials   *Financials `json:"financials"`
	AccountsDate string      `json:"accountsDate,omitempty"`
	AccountsType string      `json:"accountsType,omitempty"`
}

// FinancialsLookup is the financials endpoint payload.
type FinancialsLookup struct {
	Found         bool        `json:"found"`
	CompanyName   string      `json:"companyName"`
	CompanyNumber string      `json:"companyNumber,omitempty"`
	AccountsDate  string      `json:"accountsDate,omitempty"`
	AccountsType  string      `json:"accountsType,omitempty"`
	Financials    *Financials `json:"financials"`
	Message       string      `json:"message"`
	Cached        bool        `json:"cached,omitempty"`
}

// Dossier is everything known about a company from the registry.
type Dossier struct {
	Profile  *CompanyProfile
	Officers []Officer
	PSCs     []PSC
	FinancialData
}

// Number returns the company number, or "" without a profile.
func (d *Dossier) Number() string {
	if d == nil || d.Profile == nil {
		return ""
	}
	return d.Profile.CompanyNumber
}

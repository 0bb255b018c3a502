package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/guarzo/gazettefeed/common/model"
	"github.com/guarzo/gazettefeed/modules/companieshouse"
)

// formatDate renders an ISO date as "2 January 2006", or def when empty or
// unparseable.
func formatDate(s, layout, def string) string {
	if s == "" {
		return def
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format(layout)
}

const longDate = "2 January 2006"

func statusUpper(p *model.CompanyProfile) string {
	if p.CompanyStatus == "" {
		return "Unknown"
	}
	return strings.ToUpper(p.CompanyStatus)
}

// CompanyContext summarises a dossier for a drafting prompt: identity,
// address, industry, up to five officers and three PSCs.
func CompanyContext(d *model.Dossier) string {
	if d == nil || d.Profile == nil {
		return "Company data not available from Companies House."
	}
	p := d.Profile

	lines := []string{
		"Company Name: " + p.CompanyName,
		"Company Number: " + p.CompanyNumber,
		"Status: " + statusUpper(p),
	}
	if p.Type != "" {
		lines = append(lines, "Type: "+p.Type)
	}
	if p.DateOfCreation != "" {
		lines = append(lines, "Incorporated: "+formatDate(p.DateOfCreation, longDate, ""))
	}
	if addr := p.RegisteredOfficeAddress.Lines(false); len(addr) > 0 {
		lines = append(lines, "Registered Address: "+strings.Join(addr, ", "))
	}
	if len(p.SICCodes) > 0 {
		industries := make([]string, len(p.SICCodes))
		for i, c := range p.SICCodes {
			industries[i] = companieshouse.SICDescription(c)
		}
		lines = append(lines, "Industry: "+strings.Join(industries, ", "))
	}

	if len(d.Officers) > 0 {
		lines = append(lines, "\nOfficers:")
		for _, o := range d.Officers[:min(len(d.Officers), 5)] {
			role := strings.ReplaceAll(o.OfficerRole, "_", " ")
			if role == "" {
				role = "Officer"
			}
			status := "(Current)"
			if o.ResignedOn != "" {
				status = "(Resigned)"
			}
			lines = append(lines, fmt.Sprintf("- %s (%s) %s", o.Name, role, status))
		}
	}

	if len(d.PSCs) > 0 {
		lines = append(lines, "\nPersons with Significant Control:")
		for _, psc := range d.PSCs[:min(len(d.PSCs), 3)] {
			control := "Significant control"
			if len(psc.NaturesOfControl) > 0 {
				control = strings.ReplaceAll(psc.NaturesOfControl[0], "-", " ")
			}
			lines = append(lines, fmt.Sprintf("- %s (%s)", psc.DisplayName(), control))
		}
	}

	return strings.Join(lines, "\n")
}

// FinancialsContext lists the formatted balance sheet figures.
func FinancialsContext(fd model.FinancialData) string {
	f := fd.Financials
	if f == nil {
		return "Financial data not available"
	}

	var lines []string
	if fd.AccountsDate != "" {
		lines = append(lines, fmt.Sprintf("Latest Accounts (%s)", formatDate(fd.AccountsDate, "Jan 2006", "")))
	}
	add := func(label string, v *string) {
		if v != nil {
			lines = append(lines, fmt.Sprintf("- %s: %s", label, *v))
		}
	}
	add("Net Assets", f.NetAssetsFormatted)
	add("Total Assets", f.TotalAssetsFormatted)
	add("Current Assets", f.CurrentAssetsFormatted)
	add("Liabilities", f.LiabilitiesFormatted)
	return strings.Join(lines, "\n")
}

// RegistryReport is the long-form registry section of an analysis.
func RegistryReport(d *model.Dossier) string {
	p := d.Profile
	var b strings.Builder

	b.WriteString("\nCOMPANIES HOUSE VERIFIED DATA\n\nCOMPANY DETAILS\n")
	fmt.Fprintf(&b, "Company Name: %s\n", p.CompanyName)
	fmt.Fprintf(&b, "Company Number: %s\n", p.CompanyNumber)
	fmt.Fprintf(&b, "Status: %s\n", statusUpper(p))
	fmt.Fprintf(&b, "Type: %s\n", orDefault(p.Type, "Unknown"))
	fmt.Fprintf(&b, "Incorporated: %s\n", formatDate(p.DateOfCreation, longDate, "Unknown"))
	if p.DateOfCessation != "" {
		fmt.Fprintf(&b, "Dissolved: %s\n", formatDate(p.DateOfCessation, longDate, "Unknown"))
	}

	b.WriteString("\nREGISTERED ADDRESS\n")
	if addr := p.RegisteredOfficeAddress.Lines(true); len(addr) > 0 {
		b.WriteString(strings.Join(addr, ", "))
	} else {
		b.WriteString("Not available")
	}
	b.WriteString("\n")

	if len(p.SICCodes) > 0 {
		b.WriteString("\nINDUSTRY CODES\n")
		for _, c := range p.SICCodes {
			fmt.Fprintf(&b, "%s: %s\n", c, companieshouse.SICDescription(c))
		}
	}

	b.WriteString("\nOFFICERS (DIRECTORS & SECRETARIES)\n")
	if len(d.Officers) == 0 {
		b.WriteString("No officers found\n")
	}
	for i, o := range d.Officers {
		if i > 0 {
			b.WriteString("\n")
		}
		role := strings.ToUpper(strings.ReplaceAll(o.OfficerRole, "_", " "))
		if role == "" {
			role = "OFFICER"
		}
		appointed := ""
		if o.AppointedOn != "" {
			appointed = "Appointed: " + formatDate(o.AppointedOn, longDate, "")
		}
		resigned := "Current"
		if o.ResignedOn != "" {
			resigned = "Resigned: " + formatDate(o.ResignedOn, longDate, "")
		}
		fmt.Fprintf(&b, "%s\n  Role: %s\n  %s | %s\n", o.Name, role, appointed, resigned)
		if o.Occupation != "" {
			fmt.Fprintf(&b, "  Occupation: %s\n", o.Occupation)
		}
	}

	b.WriteString("\nPERSONS WITH SIGNIFICANT CONTROL (SHAREHOLDERS/CONTROLLERS)\n")
	if len(d.PSCs) == 0 {
		b.WriteString("No PSCs found or company exempt\n")
	}
	for i, psc := range d.PSCs {
		if i > 0 {
			b.WriteString("\n")
		}
		nature := "Control details not specified"
		if len(psc.NaturesOfControl) > 0 {
			nature = strings.Join(psc.NaturesOfControl, ", ")
		}
		notified := ""
		if psc.NotifiedOn != "" {
			notified = "Notified: " + formatDate(psc.NotifiedOn, longDate, "")
		}
		fmt.Fprintf(&b, "%s\n  %s\n  %s\n", psc.DisplayName(), nature, notified)
	}

	return b.String()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package companieshouse

var sicDescriptions = map[string]string{
	"41100": "Development of building projects",
	"47910": "Retail sale via mail order or internet",
	"56101": "Restaurants and cafes",
	"62011": "Computer programming activities",
	"62012": "Business and domestic software development",
	"62020": "Information technology consultancy activities",
	"62090": "Other information technology service activities",
	"68100": "Buying and selling of own real estate",
	"68209": "Other letting and operating of own or leased real estate",
	"70229": "Management consultancy activities",
	"82990": "Other business support service activities",
}

// SICDescription returns the industry label for a SIC code, or "SIC <code>"
// for codes without one.
func SICDescription(code string) string {
	if d, ok := sicDescriptions[code]; ok {
		return d
	}
	return "SIC " + code
}

// KnownSIC reports whether SICDescription has a real label for code.
func KnownSIC(code string) bool {
	_, ok := sicDescriptions[code]
	return ok
}

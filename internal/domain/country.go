package domain

import "strings"

// Country is one entry of the static currency table.
type Country struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Currency string `json:"currency"`
}

var countries = []Country{
	{Value: "Egypt", Label: "مصر", Currency: "EGP"},
	{Value: "Sudan", Label: "السودان", Currency: "SDG"},
	{Value: "USA", Label: "USA", Currency: "USD"},
	{Value: "Gulf", Label: "دول الخليج", Currency: "AED"},
}

// Legacy labels still present in old rows.
var countryAliases = map[string]string{
	"America": "USA",
}

// NormalizeCountry maps legacy country labels to their canonical value.
// Canonical and unknown values pass through unchanged (after trimming).
func NormalizeCountry(v string) string {
	v = strings.TrimSpace(v)
	if canonical, ok := countryAliases[v]; ok {
		return canonical
	}
	return v
}

// LookupCountry returns the table entry for v after normalization.
func LookupCountry(v string) (Country, bool) {
	v = NormalizeCountry(v)
	for _, c := range countries {
		if c.Value == v {
			return c, true
		}
	}
	return Country{}, false
}

// CurrencyFor returns the currency code of a country, if known.
func CurrencyFor(country string) (string, bool) {
	c, ok := LookupCountry(country)
	if !ok {
		return "", false
	}
	return c.Currency, true
}

// Countries returns a copy of the currency table.
func Countries() []Country {
	out := make([]Country, len(countries))
	copy(out, countries)
	return out
}

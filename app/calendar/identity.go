package calendar

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// countryCurrencies is the fixed country name to ISO currency mapping.
var countryCurrencies = []struct {
	Country  string
	Currency string
}{
	{"United States", "USD"},
	{"Euro Area", "EUR"},
	{"United Kingdom", "GBP"},
	{"Japan", "JPY"},
	{"China", "CNY"},
	{"Australia", "AUD"},
	{"New Zealand", "NZD"},
}

var (
	currencyByCountry = make(map[string]string, len(countryCurrencies)) // folded country -> code
	countryByCurrency = make(map[string]string, len(countryCurrencies)) // code -> country
	countryByFolded   = make(map[string]string, len(countryCurrencies)) // folded country -> country
)

func init() {
	for _, cc := range countryCurrencies {
		currencyByCountry[fold(cc.Country)] = cc.Currency
		countryByCurrency[cc.Currency] = cc.Country
		countryByFolded[fold(cc.Country)] = cc.Country
	}
}

// DefaultTargets returns the seven tracked economies in the given scheme.
func DefaultTargets(scheme IdentityScheme) []string {
	targets := make([]string, 0, len(countryCurrencies))
	for _, cc := range countryCurrencies {
		if scheme == SchemeCountryName {
			targets = append(targets, cc.Country)
		} else {
			targets = append(targets, cc.Currency)
		}
	}
	return targets
}

// CanonicalInstrument maps a currency code or country name onto the identity
// used by scheme. Values outside the lookup table are upper-cased.
func CanonicalInstrument(value string, scheme IdentityScheme) string {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return ""
	}
	upper := cases.Upper(language.Und).String(value)

	switch scheme {
	case SchemeCountryName:
		if country, ok := countryByCurrency[upper]; ok {
			return country
		}
		if country, ok := countryByFolded[fold(value)]; ok {
			return country
		}
	default:
		if code, ok := currencyByCountry[fold(value)]; ok {
			return code
		}
	}

	return upper
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

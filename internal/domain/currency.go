package domain

import (
	"regexp"
	"sort"
	"strings"
)

// Currency is static reference data: seeded once, immutable afterwards
// except for IsActive toggles.
type Currency struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	DecimalPlaces int32  `json:"decimal_places"`
	IsActive      bool   `json:"is_active"`
}

var codeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// NormalizeCode upper-cases and trims a currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ValidCode(code string) bool {
	return codeRe.MatchString(code)
}

// DefaultCurrencies is the built-in reference set, used when the currencies
// table has not been seeded yet.
func DefaultCurrencies() []Currency {
	return []Currency{
		{Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2, IsActive: true},
		{Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2, IsActive: true},
		{Code: "GBP", Name: "British Pound", Symbol: "£", DecimalPlaces: 2, IsActive: true},
		{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", DecimalPlaces: 0, IsActive: true},
		{Code: "CHF", Name: "Swiss Franc", Symbol: "CHF", DecimalPlaces: 2, IsActive: true},
		{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", DecimalPlaces: 2, IsActive: true},
		{Code: "AUD", Name: "Australian Dollar", Symbol: "A$", DecimalPlaces: 2, IsActive: true},
		{Code: "NZD", Name: "New Zealand Dollar", Symbol: "NZ$", DecimalPlaces: 2, IsActive: true},
		{Code: "MXN", Name: "Mexican Peso", Symbol: "MX$", DecimalPlaces: 2, IsActive: true},
		{Code: "CNY", Name: "Chinese Yuan", Symbol: "CN¥", DecimalPlaces: 2, IsActive: true},
		{Code: "SEK", Name: "Swedish Krona", Symbol: "kr", DecimalPlaces: 2, IsActive: true},
		{Code: "KWD", Name: "Kuwaiti Dinar", Symbol: "KD", DecimalPlaces: 3, IsActive: true},
	}
}

// CurrencyCatalog is an in-memory view over the currency reference set.
type CurrencyCatalog struct {
	byCode map[string]Currency
	active []Currency
}

func NewCurrencyCatalog(list []Currency) *CurrencyCatalog {
	c := &CurrencyCatalog{byCode: make(map[string]Currency, len(list))}
	for _, cur := range list {
		cur.Code = NormalizeCode(cur.Code)
		c.byCode[cur.Code] = cur
		if cur.IsActive {
			c.active = append(c.active, cur)
		}
	}
	sort.Slice(c.active, func(i, j int) bool { return c.active[i].Code < c.active[j].Code })
	return c
}

func (c *CurrencyCatalog) Lookup(code string) (Currency, bool) {
	cur, ok := c.byCode[NormalizeCode(code)]
	return cur, ok
}

// Active returns the active currencies ordered by code.
func (c *CurrencyCatalog) Active() []Currency {
	out := make([]Currency, len(c.active))
	copy(out, c.active)
	return out
}

// Codes returns the active currency codes; this is the supported set the
// batch refresher iterates.
func (c *CurrencyCatalog) Codes() []string {
	out := make([]string, 0, len(c.active))
	for _, cur := range c.active {
		out = append(out, cur.Code)
	}
	return out
}

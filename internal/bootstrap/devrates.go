package bootstrap

import "github.com/shopspring/decimal"

// devRates feeds the fake provider when no external API is configured; the
// values are the static fallback table reshaped into per-base maps.
func devRates() map[string]map[string]decimal.Decimal {
	d := func(s string) decimal.Decimal {
		v, _ := decimal.NewFromString(s)
		return v
	}
	return map[string]map[string]decimal.Decimal{
		"USD": {
			"EUR": d("0.9217"), "GBP": d("0.7905"), "JPY": d("149.50"),
			"CHF": d("0.8820"), "CAD": d("1.3580"), "AUD": d("1.5337"),
			"NZD": d("1.6447"), "MXN": d("17.15"), "CNY": d("7.24"),
			"SEK": d("10.45"), "KWD": d("0.3080"),
		},
		"EUR": {
			"USD": d("1.0850"), "GBP": d("0.8580"), "JPY": d("162.20"),
		},
	}
}

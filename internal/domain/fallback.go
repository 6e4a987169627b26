package domain

import "github.com/shopspring/decimal"

// fallbackRates maps "BASE/TARGET" to a hardcoded last-resort rate.
// These are deliberately coarse; they are only served when every live
// tier has failed.
var fallbackRates = map[string]string{
	"EUR/USD": "1.0850",
	"GBP/USD": "1.2650",
	"AUD/USD": "0.6520",
	"NZD/USD": "0.6080",
	"USD/JPY": "149.50",
	"USD/CHF": "0.8820",
	"USD/CAD": "1.3580",
	"USD/MXN": "17.15",
	"USD/CNY": "7.24",
	"USD/SEK": "10.45",
	"USD/KWD": "0.3080",
	"EUR/GBP": "0.8580",
	"EUR/JPY": "162.20",
	"GBP/JPY": "189.10",
}

// FallbackRate looks up the static table, trying the direct pair first and
// then the inverse. The second return is false when neither exists.
func FallbackRate(base, target string) (decimal.Decimal, bool) {
	if s, ok := fallbackRates[PairKey(base, target)]; ok {
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	if s, ok := fallbackRates[PairKey(target, base)]; ok {
		d, err := decimal.NewFromString(s)
		if err != nil || d.IsZero() {
			return decimal.Decimal{}, false
		}
		return decimal.NewFromInt(1).Div(d), true
	}
	return decimal.Decimal{}, false
}

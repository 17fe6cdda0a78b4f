package money

import (
	"github.com/shopspring/decimal"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatUSD 金额缩写：500000 → "$500K"，2500000 → "$2.5M"，1200000000 → "$1.2B"
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount).Abs()
	switch {
	case d.GreaterThanOrEqual(billion):
		return "$" + d.Div(billion).Round(1).String() + "B"
	case d.GreaterThanOrEqual(million):
		return "$" + d.Div(million).Round(1).String() + "M"
	case d.GreaterThanOrEqual(thousand):
		return "$" + d.Div(thousand).Round(0).String() + "K"
	default:
		return "$" + d.Round(0).String()
	}
}

// FormatRange 支票区间："$500K–$2M"；只有一端时退化为 "$500K+" / "up to $2M"
func FormatRange(min, max float64) string {
	switch {
	case min > 0 && max > 0 && max > min:
		return FormatUSD(min) + "–" + FormatUSD(max)
	case min > 0 && max > 0:
		return FormatUSD(min)
	case min > 0:
		return FormatUSD(min) + "+"
	case max > 0:
		return "up to " + FormatUSD(max)
	default:
		return ""
	}
}

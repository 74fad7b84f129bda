package domain

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as US dollars rounded to cents, e.g. "$1,500.00".
func FormatUSD(amount decimal.Decimal) string {
	cur := *money.New(0, money.USD).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// RoundCents rounds an amount to two decimal places and returns it as float64 for JSON output.
func RoundCents(amount decimal.Decimal) float64 {
	f, _ := amount.Round(2).Float64()
	return f
}

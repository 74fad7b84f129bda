// Package domain provides the ledger's core types, contracts and error kinds.
package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TradeSide represents the direction of a trade
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Placeholder values written when a stock is first bought before its profile is known.
const (
	UnknownMarketCap = "Unknown"
	UnknownAsOf      = "Unknown"
)

// Investor is identified by a unique name.
type Investor struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Stock is the single row kept per ticker symbol.
type Stock struct {
	Symbol    string              `db:"symbol" json:"symbol"`
	Company   string              `db:"company" json:"company"`
	Price     decimal.Decimal     `db:"price" json:"price"`
	MarketCap string              `db:"market_cap" json:"market_cap"`
	PERatio   decimal.NullDecimal `db:"pe_ratio" json:"pe_ratio"`
	Beta      decimal.NullDecimal `db:"beta" json:"beta"`
}

// PlaceholderCompany is the company label used until a profile refresh fills it in.
func PlaceholderCompany(symbol string) string {
	return "Company for " + symbol
}

// NewPlaceholderStock builds the row inserted on the first purchase of an unknown symbol.
func NewPlaceholderStock(symbol string, price decimal.Decimal) Stock {
	return Stock{
		Symbol:    symbol,
		Company:   PlaceholderCompany(symbol),
		Price:     price,
		MarketCap: UnknownMarketCap,
		PERatio:   decimal.NewNullDecimal(decimal.Zero),
	}
}

// Holding is an investor's share count in one stock. A zero count is never stored.
type Holding struct {
	InvestorID int64  `db:"investor_id" json:"investor_id"`
	Symbol     string `db:"stock_symbol" json:"symbol"`
	Shares     int64  `db:"shares" json:"shares"`
}

// HoldingView is one row of the holdings/stocks join used for valuation.
type HoldingView struct {
	Symbol  string              `db:"symbol"`
	Company string              `db:"company"`
	Shares  int64               `db:"shares"`
	Price   decimal.Decimal     `db:"price"`
	Beta    decimal.NullDecimal `db:"beta"`
	Value   decimal.Decimal     `db:"-"`
}

// Quote is a point-in-time price lookup for a ticker symbol.
type Quote struct {
	Symbol string
	Price  decimal.Decimal
	AsOf   string // latest trading day as reported by the provider
}

// StockProfile carries the descriptive fields refreshed from a company overview.
type StockProfile struct {
	Symbol    string
	Company   string
	MarketCap string
	PERatio   decimal.NullDecimal
	Beta      decimal.NullDecimal
}

// NormalizeSymbol upper-cases and trims a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// NormalizeName trims an investor name. Names are case-sensitive.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

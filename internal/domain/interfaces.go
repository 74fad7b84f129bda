package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// QuoteProvider returns a current price for a ticker symbol.
// Every failure (throttling, unknown symbol, transport) satisfies errors.Is(err, ErrQuoteUnavailable).
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// ProfileProvider returns descriptive company data for a ticker symbol.
// Failures satisfy errors.Is(err, ErrProfileUnavailable).
type ProfileProvider interface {
	GetCompanyOverview(ctx context.Context, symbol string) (*StockProfile, error)
}

// LedgerStore is the record-level contract over investors, stocks and holdings.
// Find operations return (nil, nil) when the record does not exist.
// Driver failures satisfy errors.Is(err, ErrStoreUnavailable).
type LedgerStore interface {
	FindInvestorByName(ctx context.Context, name string) (*Investor, error)
	// InsertInvestorIfAbsent reports whether a new investor row was created.
	InsertInvestorIfAbsent(ctx context.Context, name string) (bool, error)

	FindStockBySymbol(ctx context.Context, symbol string) (*Stock, error)
	InsertStock(ctx context.Context, stock Stock) error
	UpdateStockPrice(ctx context.Context, symbol string, price decimal.Decimal) error
	UpdateStockProfile(ctx context.Context, profile StockProfile) error
	ListStocks(ctx context.Context) ([]Stock, error)
	ListAllStockSymbols(ctx context.Context) ([]string, error)

	FindHolding(ctx context.Context, investorID int64, symbol string) (*Holding, error)
	InsertHolding(ctx context.Context, investorID int64, symbol string, shares int64) error
	IncrementHoldingShares(ctx context.Context, investorID int64, symbol string, delta int64) error
	SetHoldingShares(ctx context.Context, investorID int64, symbol string, shares int64) error
	DeleteHolding(ctx context.Context, investorID int64, symbol string) error
	ListHoldingsWithStock(ctx context.Context, investorID int64) ([]HoldingView, error)

	// InTx runs fn against a store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(LedgerStore) error) error
}

// MetricsRecorder receives ledger events. A nil recorder is allowed by every caller.
type MetricsRecorder interface {
	RecordTrade(side TradeSide, outcome string)
	RecordQuote(outcome string)
	RecordRefresh(updated, failed int)
}

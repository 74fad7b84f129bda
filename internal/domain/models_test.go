package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "XYZ", NormalizeSymbol("  xyz "))
	assert.Equal(t, "BRK.B", NormalizeSymbol("brk.b"))
	assert.Equal(t, "", NormalizeSymbol("   "))
}

func TestNormalizeName_KeepsCase(t *testing.T) {
	assert.Equal(t, "Alice", NormalizeName(" Alice\t"))
	assert.NotEqual(t, NormalizeName("alice"), NormalizeName("Alice"))
}

func TestNewPlaceholderStock(t *testing.T) {
	stock := NewPlaceholderStock("XYZ", decimal.NewFromInt(50))

	assert.Equal(t, "XYZ", stock.Symbol)
	assert.Equal(t, "Company for XYZ", stock.Company)
	assert.Equal(t, "Unknown", stock.MarketCap)
	assert.True(t, stock.Price.Equal(decimal.NewFromInt(50)))
	require.True(t, stock.PERatio.Valid)
	assert.True(t, stock.PERatio.Decimal.IsZero())
	assert.False(t, stock.Beta.Valid)
}

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"50", "$50.00"},
		{"500", "$500.00"},
		{"1500.5", "$1,500.50"},
		{"186.2049", "$186.20"},
		{"0", "$0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUSD(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 186.2, RoundCents(decimal.RequireFromString("186.2049")))
	assert.Equal(t, 500.0, RoundCents(decimal.NewFromInt(500)))
}

func TestLedgerError_UnwrapsKindAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := StoreError("insert investor", cause)

	assert.True(t, errors.Is(err, ErrStoreUnavailable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrInvestorNotFound))
	assert.Contains(t, err.Error(), "failed to insert investor")
}

func TestStoreError_Nil(t *testing.T) {
	assert.NoError(t, StoreError("anything", nil))
}

func TestLedgerError_Messages(t *testing.T) {
	assert.Equal(t, "Investor Bob not found.", InvestorNotFound("Bob").Error())
	assert.Equal(t, "Alice does not own any shares of XYZ.", NoSuchHolding("Alice", "XYZ").Error())
	assert.True(t, errors.Is(StockNotFound("XYZ"), ErrStockNotFound))
}

func TestInsufficientSharesError(t *testing.T) {
	var err error = &InsufficientSharesError{Investor: "Alice", Symbol: "XYZ", Owned: 3, Requested: 5}
	wrapped := fmt.Errorf("sell failed: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInsufficientShares))
	assert.Equal(t, "Alice only owns 3 shares of XYZ.", ErrorMessage(wrapped))

	var ise *InsufficientSharesError
	require.True(t, errors.As(wrapped, &ise))
	assert.Equal(t, int64(3), ise.Owned)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Investor Bob not found.", ErrorMessage(fmt.Errorf("buy: %w", InvestorNotFound("Bob"))))
	assert.Equal(t, "plain", ErrorMessage(errors.New("plain")))
}

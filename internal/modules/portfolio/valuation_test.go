package portfolio

import (
	"testing"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func beta(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func TestValue_TotalIsSumOfSharesTimesPrice(t *testing.T) {
	rows := []domain.HoldingView{
		{Symbol: "AAA", Shares: 10, Price: dec("50")},
		{Symbol: "BBB", Shares: 3, Price: dec("12.34")},
		{Symbol: "CCC", Shares: 1, Price: dec("0.01")},
	}

	v := Value(rows)

	require.Len(t, v.Holdings, 3)
	assert.True(t, v.Holdings[0].Value.Equal(dec("500")))
	assert.True(t, v.Holdings[1].Value.Equal(dec("37.02")))
	assert.True(t, v.TotalValue.Equal(dec("537.03")))
}

func TestValue_RiskScoreIsValueWeightedBeta(t *testing.T) {
	rows := []domain.HoldingView{
		{Symbol: "AAA", Shares: 10, Price: dec("10"), Beta: beta("0.5")}, // value 100
		{Symbol: "BBB", Shares: 30, Price: dec("10"), Beta: beta("1.5")}, // value 300
	}

	v := Value(rows)

	// (0.5*100 + 1.5*300) / 400
	assert.InDelta(t, 1.25, v.RiskScore, 1e-9)
}

func TestValue_NullBetaExcludedFromBothSides(t *testing.T) {
	rows := []domain.HoldingView{
		{Symbol: "AAA", Shares: 10, Price: dec("10"), Beta: beta("2")}, // value 100
		{Symbol: "BBB", Shares: 1000, Price: dec("10")},                // value 10000, no beta
	}

	v := Value(rows)

	assert.InDelta(t, 2.0, v.RiskScore, 1e-9)
	assert.True(t, v.TotalValue.Equal(dec("10100")))
}

func TestValue_ZeroDenominatorGivesZeroRisk(t *testing.T) {
	tests := []struct {
		name string
		rows []domain.HoldingView
	}{
		{"no rows", nil},
		{"no betas", []domain.HoldingView{{Symbol: "AAA", Shares: 5, Price: dec("10")}}},
		{"zero prices", []domain.HoldingView{{Symbol: "AAA", Shares: 5, Price: dec("0"), Beta: beta("1.3")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Value(tt.rows)
			assert.Equal(t, 0.0, v.RiskScore)
		})
	}
}

func TestValue_ZeroValueRowWithBetaDoesNotShiftScore(t *testing.T) {
	rows := []domain.HoldingView{
		{Symbol: "AAA", Shares: 10, Price: dec("10"), Beta: beta("1.1")},
		{Symbol: "BBB", Shares: 10, Price: dec("0"), Beta: beta("3.0")},
	}

	assert.InDelta(t, 1.1, Value(rows).RiskScore, 1e-9)
}

package portfolio

import (
	"github.com/aristath/stockledger/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// HoldingValuation is one valued row of a portfolio
type HoldingValuation struct {
	Symbol  string
	Company string
	Shares  int64
	Price   decimal.Decimal
	Beta    decimal.NullDecimal
	Value   decimal.Decimal
}

// Valuation is the total value and value-weighted beta of a set of holdings
type Valuation struct {
	Holdings   []HoldingValuation
	TotalValue decimal.Decimal
	RiskScore  float64
}

// Value computes per-row values, their total, and the risk score.
// The risk score is the value-weighted mean beta over rows with a known beta,
// and 0 when those rows carry no value.
func Value(rows []domain.HoldingView) Valuation {
	v := Valuation{
		Holdings:   make([]HoldingValuation, 0, len(rows)),
		TotalValue: decimal.Zero,
	}

	var betas, weights []float64
	for _, row := range rows {
		value := row.Price.Mul(decimal.NewFromInt(row.Shares))
		v.TotalValue = v.TotalValue.Add(value)
		v.Holdings = append(v.Holdings, HoldingValuation{
			Symbol:  row.Symbol,
			Company: row.Company,
			Shares:  row.Shares,
			Price:   row.Price,
			Beta:    row.Beta,
			Value:   value,
		})

		if row.Beta.Valid {
			betas = append(betas, row.Beta.Decimal.InexactFloat64())
			weights = append(weights, value.InexactFloat64())
		}
	}

	v.RiskScore = weightedMean(betas, weights)
	return v
}

func weightedMean(x, weights []float64) float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return 0
	}
	return stat.Mean(x, weights)
}

package portfolio

import (
	"fmt"
	"strings"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Beta band thresholds shared by stock and portfolio classification
const (
	lowBetaThreshold  = 0.8
	highBetaThreshold = 1.2
)

// RiskLevel is a beta band
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// ClassifyBeta places a beta into one of three bands
func ClassifyBeta(beta float64) RiskLevel {
	switch {
	case beta < lowBetaThreshold:
		return RiskLow
	case beta < highBetaThreshold:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// NotAvailable marks a missing metric
const NotAvailable = "Not available"

var stockBetaInterpretation = map[RiskLevel]string{
	RiskLow:      "Low risk compared to the market",
	RiskModerate: "Moderate risk, similar to the market",
	RiskHigh:     "High risk compared to the market",
}

var portfolioBetaInterpretation = map[RiskLevel]string{
	RiskLow:      "Your portfolio is considered less risky than the market.",
	RiskModerate: "Your portfolio has average market risk.",
	RiskHigh:     "Your portfolio is considered more risky than the market.",
}

// ClassifyPE interprets a price/earnings ratio. Boundaries 15 and 25 are "Fairly valued".
func ClassifyPE(pe float64) string {
	switch {
	case pe < 15:
		return "Potentially undervalued or higher risk"
	case pe <= 25:
		return "Fairly valued"
	default:
		return "Potentially overvalued or lower risk"
	}
}

// StockRiskReport is the classification of a single stock
type StockRiskReport struct {
	Symbol             string
	Beta               decimal.NullDecimal
	RiskLevel          RiskLevel // empty when beta is unknown
	BetaInterpretation string
	Price              decimal.Decimal
	PERatio            decimal.NullDecimal // invalid when missing or zero
	PEInterpretation   string
	MarketCap          string
	Summary            string
}

// NewStockRiskReport classifies a stock row
func NewStockRiskReport(stock domain.Stock) StockRiskReport {
	r := StockRiskReport{
		Symbol:             stock.Symbol,
		Beta:               stock.Beta,
		BetaInterpretation: NotAvailable,
		Price:              stock.Price,
		PEInterpretation:   NotAvailable,
		MarketCap:          stock.MarketCap,
	}

	if stock.Beta.Valid {
		r.RiskLevel = ClassifyBeta(stock.Beta.Decimal.InexactFloat64())
		r.BetaInterpretation = stockBetaInterpretation[r.RiskLevel]
	}
	// A zero PE is the placeholder for "unknown"
	if stock.PERatio.Valid && !stock.PERatio.Decimal.IsZero() {
		r.PERatio = stock.PERatio
		r.PEInterpretation = ClassifyPE(stock.PERatio.Decimal.InexactFloat64())
	}

	r.Summary = r.render()
	return r
}

func (r StockRiskReport) render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Risk Assessment for %s:\n\n", r.Symbol)

	if r.Beta.Valid {
		fmt.Fprintf(&b, "1. Beta: %s\n", r.Beta.Decimal.StringFixed(2))
		fmt.Fprintf(&b, "   Interpretation: %s\n", r.BetaInterpretation)
	} else {
		b.WriteString("1. Beta: Not available\n")
	}

	fmt.Fprintf(&b, "\n2. Current Price: %s\n", domain.FormatUSD(r.Price))

	if r.PERatio.Valid {
		fmt.Fprintf(&b, "\n3. P/E Ratio: %s\n", r.PERatio.Decimal.StringFixed(2))
		fmt.Fprintf(&b, "   Interpretation: %s\n", r.PEInterpretation)
	} else {
		b.WriteString("\n3. P/E Ratio: Not available\n")
	}

	fmt.Fprintf(&b, "\n4. Market Cap: %s\n", r.MarketCap)
	b.WriteString("   Note: Market cap can indicate company size and associated risks\n")
	return b.String()
}

// PortfolioRiskReport is the classification of an investor's aggregate risk score
type PortfolioRiskReport struct {
	Investor       string
	Empty          bool
	TotalValue     decimal.Decimal
	RiskScore      float64
	RiskLevel      RiskLevel // empty for an empty portfolio
	Interpretation string
	Summary        string
}

// NewPortfolioRiskReport classifies a portfolio snapshot
func NewPortfolioRiskReport(p Portfolio) PortfolioRiskReport {
	if p.Empty {
		return PortfolioRiskReport{
			Investor:   p.Investor,
			Empty:      true,
			TotalValue: decimal.Zero,
			Summary:    p.Message,
		}
	}

	level := ClassifyBeta(p.RiskScore)
	r := PortfolioRiskReport{
		Investor:       p.Investor,
		TotalValue:     p.TotalValue,
		RiskScore:      p.RiskScore,
		RiskLevel:      level,
		Interpretation: portfolioBetaInterpretation[level],
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Portfolio Risk Assessment for %s:\n\n", p.Investor)
	fmt.Fprintf(&b, "Total Portfolio Value: %s\n", domain.FormatUSD(p.TotalValue))
	fmt.Fprintf(&b, "Portfolio Risk Score (Weighted Beta): %.2f\n\n", p.RiskScore)
	fmt.Fprintf(&b, "Overall: %s\n", r.Interpretation)
	r.Summary = b.String()
	return r
}

// Package portfolio provides portfolio valuation and risk assessment.
package portfolio

import (
	"context"
	"fmt"
	"strings"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store is the read side of the ledger store used for valuation
type Store interface {
	FindInvestorByName(ctx context.Context, name string) (*domain.Investor, error)
	FindStockBySymbol(ctx context.Context, symbol string) (*domain.Stock, error)
	ListHoldingsWithStock(ctx context.Context, investorID int64) ([]domain.HoldingView, error)
}

// Portfolio is a valuation snapshot. Empty portfolios carry a message instead of holdings.
type Portfolio struct {
	Investor   string
	Empty      bool
	Message    string
	Holdings   []HoldingValuation
	TotalValue decimal.Decimal
	RiskScore  float64
}

// ComprehensiveReport combines the portfolio assessment with one assessment per holding
type ComprehensiveReport struct {
	Investor  string
	Portfolio PortfolioRiskReport
	Stocks    []StockRiskReport
	Report    string
}

// Service computes portfolio snapshots and risk reports. It never writes.
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService creates a new portfolio service
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("service", "portfolio").Logger(),
	}
}

// EmptyPortfolioMessage is reported for an investor without holdings
func EmptyPortfolioMessage(name string) string {
	return fmt.Sprintf("%s has no stocks in their portfolio.", name)
}

// GetPortfolio values the investor's holdings at stored prices.
// An unknown investor yields the same empty result as one without holdings.
func (s *Service) GetPortfolio(ctx context.Context, investorName string) (Portfolio, error) {
	investorName = domain.NormalizeName(investorName)
	if investorName == "" {
		return Portfolio{}, domain.NewLedgerError(domain.ErrInvalidRequest, nil, "Investor name is required.")
	}

	empty := Portfolio{
		Investor:   investorName,
		Empty:      true,
		Message:    EmptyPortfolioMessage(investorName),
		Holdings:   []HoldingValuation{},
		TotalValue: decimal.Zero,
	}

	investor, err := s.store.FindInvestorByName(ctx, investorName)
	if err != nil {
		return Portfolio{}, fmt.Errorf("failed to load investor: %w", err)
	}
	if investor == nil {
		return empty, nil
	}

	rows, err := s.store.ListHoldingsWithStock(ctx, investor.ID)
	if err != nil {
		return Portfolio{}, fmt.Errorf("failed to load holdings: %w", err)
	}
	if len(rows) == 0 {
		return empty, nil
	}

	v := Value(rows)
	s.log.Debug().
		Str("investor", investorName).
		Int("holdings", len(v.Holdings)).
		Str("total_value", v.TotalValue.String()).
		Float64("risk_score", v.RiskScore).
		Msg("Portfolio valued")

	return Portfolio{
		Investor:   investorName,
		Holdings:   v.Holdings,
		TotalValue: v.TotalValue,
		RiskScore:  v.RiskScore,
	}, nil
}

// EvaluateStockRisk classifies a stock by beta and P/E ratio
func (s *Service) EvaluateStockRisk(ctx context.Context, symbol string) (StockRiskReport, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return StockRiskReport{}, domain.NewLedgerError(domain.ErrInvalidRequest, nil, "Stock symbol is required.")
	}

	stock, err := s.store.FindStockBySymbol(ctx, symbol)
	if err != nil {
		return StockRiskReport{}, fmt.Errorf("failed to load stock: %w", err)
	}
	if stock == nil {
		return StockRiskReport{}, domain.StockNotFound(symbol)
	}
	return NewStockRiskReport(*stock), nil
}

// EvaluatePortfolioRisk classifies the investor's aggregate risk score
func (s *Service) EvaluatePortfolioRisk(ctx context.Context, investorName string) (PortfolioRiskReport, error) {
	p, err := s.GetPortfolio(ctx, investorName)
	if err != nil {
		return PortfolioRiskReport{}, err
	}
	return NewPortfolioRiskReport(p), nil
}

// ComprehensiveReport renders the portfolio assessment followed by each holding's assessment
func (s *Service) ComprehensiveReport(ctx context.Context, investorName string) (ComprehensiveReport, error) {
	p, err := s.GetPortfolio(ctx, investorName)
	if err != nil {
		return ComprehensiveReport{}, err
	}

	report := ComprehensiveReport{
		Investor:  p.Investor,
		Portfolio: NewPortfolioRiskReport(p),
		Stocks:    []StockRiskReport{},
	}
	if p.Empty {
		report.Report = p.Message
		return report, nil
	}

	var b strings.Builder
	b.WriteString(report.Portfolio.Summary)
	b.WriteString("\nIndividual Stock Assessments:\n")
	for _, h := range p.Holdings {
		stockReport, err := s.EvaluateStockRisk(ctx, h.Symbol)
		if err != nil {
			return ComprehensiveReport{}, err
		}
		report.Stocks = append(report.Stocks, stockReport)
		b.WriteString("\n")
		b.WriteString(stockReport.Summary)
	}
	report.Report = b.String()
	return report, nil
}

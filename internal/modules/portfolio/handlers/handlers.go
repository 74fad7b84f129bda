// Package handlers provides HTTP handlers for portfolio valuation and risk reports.
package handlers

import (
	"context"
	"net/http"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/aristath/stockledger/internal/httpapi"
	"github.com/aristath/stockledger/internal/modules/portfolio"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PortfolioService is the read side used by the handlers
type PortfolioService interface {
	GetPortfolio(ctx context.Context, investorName string) (portfolio.Portfolio, error)
	EvaluateStockRisk(ctx context.Context, symbol string) (portfolio.StockRiskReport, error)
	EvaluatePortfolioRisk(ctx context.Context, investorName string) (portfolio.PortfolioRiskReport, error)
	ComprehensiveReport(ctx context.Context, investorName string) (portfolio.ComprehensiveReport, error)
}

// Handler handles portfolio HTTP requests
type Handler struct {
	service PortfolioService
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service PortfolioService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// HoldingResponse is one valued holding
type HoldingResponse struct {
	Symbol  string   `json:"symbol"`
	Company string   `json:"company"`
	Shares  int64    `json:"shares"`
	Price   float64  `json:"price"`
	Beta    *float64 `json:"beta"`
	Value   float64  `json:"value"`
}

// PortfolioResponse is the body of GET /api/portfolios/{investorName}
type PortfolioResponse struct {
	Investor   string            `json:"investor"`
	Empty      bool              `json:"empty"`
	Message    string            `json:"message,omitempty"`
	Holdings   []HoldingResponse `json:"holdings"`
	TotalValue float64           `json:"totalValue"`
	RiskScore  float64           `json:"riskScore"`
}

// StockRiskResponse is the body of GET /api/stocks/{symbol}/risk
type StockRiskResponse struct {
	Symbol             string   `json:"symbol"`
	Beta               *float64 `json:"beta"`
	RiskLevel          string   `json:"riskLevel,omitempty"`
	BetaInterpretation string   `json:"betaInterpretation"`
	Price              float64  `json:"price"`
	PERatio            *float64 `json:"peRatio"`
	PEInterpretation   string   `json:"peInterpretation"`
	MarketCap          string   `json:"marketCap"`
	Summary            string   `json:"summary"`
}

// PortfolioRiskResponse is the body of GET /api/portfolios/{investorName}/risk
type PortfolioRiskResponse struct {
	Investor       string  `json:"investor"`
	Empty          bool    `json:"empty"`
	TotalValue     float64 `json:"totalValue"`
	RiskScore      float64 `json:"riskScore"`
	RiskLevel      string  `json:"riskLevel,omitempty"`
	Interpretation string  `json:"interpretation,omitempty"`
	Summary        string  `json:"summary"`
}

// ReportResponse is the body of GET /api/portfolios/{investorName}/report
type ReportResponse struct {
	Investor  string                `json:"investor"`
	Portfolio PortfolioRiskResponse `json:"portfolio"`
	Stocks    []StockRiskResponse   `json:"stocks"`
	Report    string                `json:"report"`
}

// HandleGetPortfolio handles GET /api/portfolios/{investorName}
func (h *Handler) HandleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetPortfolio(r.Context(), chi.URLParam(r, "investorName"))
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, NewPortfolioResponse(p))
}

// HandleGetPortfolioRisk handles GET /api/portfolios/{investorName}/risk
func (h *Handler) HandleGetPortfolioRisk(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.EvaluatePortfolioRisk(r.Context(), chi.URLParam(r, "investorName"))
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, NewPortfolioRiskResponse(report))
}

// HandleGetReport handles GET /api/portfolios/{investorName}/report
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.ComprehensiveReport(r.Context(), chi.URLParam(r, "investorName"))
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, NewReportResponse(report))
}

// HandleGetStockRisk handles GET /api/stocks/{symbol}/risk
func (h *Handler) HandleGetStockRisk(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.EvaluateStockRisk(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, NewStockRiskResponse(report))
}

// NewPortfolioResponse converts a portfolio snapshot for output
func NewPortfolioResponse(p portfolio.Portfolio) PortfolioResponse {
	resp := PortfolioResponse{
		Investor:   p.Investor,
		Empty:      p.Empty,
		Message:    p.Message,
		Holdings:   make([]HoldingResponse, 0, len(p.Holdings)),
		TotalValue: domain.RoundCents(p.TotalValue),
		RiskScore:  p.RiskScore,
	}
	for _, hv := range p.Holdings {
		resp.Holdings = append(resp.Holdings, HoldingResponse{
			Symbol:  hv.Symbol,
			Company: hv.Company,
			Shares:  hv.Shares,
			Price:   domain.RoundCents(hv.Price),
			Beta:    nullableFloat(hv.Beta),
			Value:   domain.RoundCents(hv.Value),
		})
	}
	return resp
}

// NewReportResponse converts a comprehensive report for output
func NewReportResponse(report portfolio.ComprehensiveReport) ReportResponse {
	resp := ReportResponse{
		Investor:  report.Investor,
		Portfolio: NewPortfolioRiskResponse(report.Portfolio),
		Stocks:    make([]StockRiskResponse, 0, len(report.Stocks)),
		Report:    report.Report,
	}
	for _, s := range report.Stocks {
		resp.Stocks = append(resp.Stocks, NewStockRiskResponse(s))
	}
	return resp
}

// NewPortfolioRiskResponse converts a portfolio risk report for output
func NewPortfolioRiskResponse(r portfolio.PortfolioRiskReport) PortfolioRiskResponse {
	return PortfolioRiskResponse{
		Investor:       r.Investor,
		Empty:          r.Empty,
		TotalValue:     domain.RoundCents(r.TotalValue),
		RiskScore:      r.RiskScore,
		RiskLevel:      string(r.RiskLevel),
		Interpretation: r.Interpretation,
		Summary:        r.Summary,
	}
}

// NewStockRiskResponse converts a stock risk report for output
func NewStockRiskResponse(r portfolio.StockRiskReport) StockRiskResponse {
	return StockRiskResponse{
		Symbol:             r.Symbol,
		Beta:               nullableFloat(r.Beta),
		RiskLevel:          string(r.RiskLevel),
		BetaInterpretation: r.BetaInterpretation,
		Price:              domain.RoundCents(r.Price),
		PERatio:            nullableFloat(r.PERatio),
		PEInterpretation:   r.PEInterpretation,
		MarketCap:          r.MarketCap,
		Summary:            r.Summary,
	}
}

func nullableFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

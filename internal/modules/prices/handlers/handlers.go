// Package handlers provides HTTP handlers for stock listings and price maintenance.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/aristath/stockledger/internal/httpapi"
	"github.com/aristath/stockledger/internal/modules/prices"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// PriceService is the price maintenance engine used by the handlers
type PriceService interface {
	RefreshAllPrices(ctx context.Context) (prices.RefreshSummary, error)
	RefreshStockProfile(ctx context.Context, symbol string) (domain.Stock, error)
	ListStocks(ctx context.Context) ([]domain.Stock, error)
}

// Handler handles stock and price HTTP requests
type Handler struct {
	service PriceService
	log     zerolog.Logger
}

// NewHandler creates a new prices handler
func NewHandler(service PriceService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "prices").Logger(),
	}
}

// StockResponse is one stock row
type StockResponse struct {
	Symbol    string   `json:"symbol"`
	Company   string   `json:"company"`
	Price     float64  `json:"price"`
	MarketCap string   `json:"marketCap"`
	PERatio   *float64 `json:"peRatio"`
	Beta      *float64 `json:"beta"`
}

// RefreshResponse is the body of POST /api/prices/refresh
type RefreshResponse struct {
	RunID      string   `json:"runId"`
	Total      int      `json:"total"`
	Updated    []string `json:"updated"`
	Failed     []string `json:"failed"`
	StartedAt  string   `json:"startedAt"`
	FinishedAt string   `json:"finishedAt"`
}

// HandleListStocks handles GET /api/stocks
func (h *Handler) HandleListStocks(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.service.ListStocks(r.Context())
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}

	resp := make([]StockResponse, 0, len(stocks))
	for _, s := range stocks {
		resp = append(resp, NewStockResponse(s))
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, map[string]interface{}{
		"stocks": resp,
		"count":  len(resp),
	})
}

// HandleRefreshProfile handles POST /api/stocks/{symbol}/profile
func (h *Handler) HandleRefreshProfile(w http.ResponseWriter, r *http.Request) {
	stock, err := h.service.RefreshStockProfile(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, NewStockResponse(stock))
}

// HandleRefreshPrices handles POST /api/prices/refresh.
// Per-symbol failures are listed in the body; the request itself still succeeds.
func (h *Handler) HandleRefreshPrices(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.RefreshAllPrices(r.Context())
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}

	httpapi.WriteJSON(w, h.log, http.StatusOK, NewRefreshResponse(summary))
}

// NewRefreshResponse converts a refresh summary for output
func NewRefreshResponse(summary prices.RefreshSummary) RefreshResponse {
	return RefreshResponse{
		RunID:      summary.RunID.String(),
		Total:      summary.Total,
		Updated:    summary.Updated,
		Failed:     summary.Failed,
		StartedAt:  summary.StartedAt.Format(time.RFC3339),
		FinishedAt: summary.FinishedAt.Format(time.RFC3339),
	}
}

// NewStockResponse converts a stock row for output
func NewStockResponse(s domain.Stock) StockResponse {
	return StockResponse{
		Symbol:    s.Symbol,
		Company:   s.Company,
		Price:     domain.RoundCents(s.Price),
		MarketCap: s.MarketCap,
		PERatio:   nullableFloat(s.PERatio),
		Beta:      nullableFloat(s.Beta),
	}
}

func nullableFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

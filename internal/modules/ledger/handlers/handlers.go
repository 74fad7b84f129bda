// Package handlers provides HTTP handlers for investor registration and trades.
package handlers

import (
	"context"
	"net/http"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/aristath/stockledger/internal/httpapi"
	"github.com/aristath/stockledger/internal/modules/ledger"
	"github.com/rs/zerolog"
)

// LedgerService is the ledger engine used by the handlers
type LedgerService interface {
	RegisterInvestor(ctx context.Context, name string) (ledger.RegistrationResult, error)
	Buy(ctx context.Context, investorName, symbol string, shares int64) (ledger.TradeConfirmation, error)
	Sell(ctx context.Context, investorName, symbol string, shares int64) (ledger.TradeConfirmation, error)
}

// Handler handles ledger HTTP requests
type Handler struct {
	service LedgerService
	log     zerolog.Logger
}

// NewHandler creates a new ledger handler
func NewHandler(service LedgerService, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "ledger").Logger(),
	}
}

// RegisterInvestorRequest is the body of POST /api/investors
type RegisterInvestorRequest struct {
	InvestorName string `json:"investorName"`
}

// TradeRequest is the body of POST /api/trades/buy and /api/trades/sell
type TradeRequest struct {
	InvestorName string `json:"investorName"`
	StockSymbol  string `json:"stockSymbol"`
	Shares       int64  `json:"shares"`
}

// TradeResponse is a trade confirmation with money rounded to cents
type TradeResponse struct {
	Investor       string  `json:"investor"`
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Shares         int64   `json:"shares"`
	Price          float64 `json:"price"`
	Total          float64 `json:"total"`
	AsOf           string  `json:"asOf"`
	PriceAvailable bool    `json:"priceAvailable"`
	Message        string  `json:"message"`
}

// HandleRegisterInvestor handles POST /api/investors
func (h *Handler) HandleRegisterInvestor(w http.ResponseWriter, r *http.Request) {
	var req RegisterInvestorRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	if domain.NormalizeName(req.InvestorName) == "" {
		httpapi.WriteError(w, h.log, http.StatusBadRequest, "Investor name is required.")
		return
	}

	result, err := h.service.RegisterInvestor(r.Context(), req.InvestorName)
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	httpapi.WriteJSON(w, h.log, status, map[string]interface{}{
		"name":    result.Name,
		"created": result.Created,
		"message": result.Message,
	})
}

// HandleBuy handles POST /api/trades/buy
func (h *Handler) HandleBuy(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTrade(w, r)
	if !ok {
		return
	}

	conf, err := h.service.Buy(r.Context(), req.InvestorName, req.StockSymbol, req.Shares)
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, NewTradeResponse(conf))
}

// HandleSell handles POST /api/trades/sell
func (h *Handler) HandleSell(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTrade(w, r)
	if !ok {
		return
	}

	conf, err := h.service.Sell(r.Context(), req.InvestorName, req.StockSymbol, req.Shares)
	if err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return
	}
	httpapi.WriteJSON(w, h.log, http.StatusOK, NewTradeResponse(conf))
}

// decodeTrade rejects malformed bodies and invalid fields before the engine sees them
func (h *Handler) decodeTrade(w http.ResponseWriter, r *http.Request) (TradeRequest, bool) {
	var req TradeRequest
	if err := httpapi.DecodeJSON(r, &req); err != nil {
		httpapi.WriteFailure(w, h.log, err)
		return req, false
	}

	switch {
	case req.Shares <= 0:
		httpapi.WriteError(w, h.log, http.StatusBadRequest, "Shares must be a positive integer.")
	case domain.NormalizeName(req.InvestorName) == "":
		httpapi.WriteError(w, h.log, http.StatusBadRequest, "Investor name is required.")
	case domain.NormalizeSymbol(req.StockSymbol) == "":
		httpapi.WriteError(w, h.log, http.StatusBadRequest, "Stock symbol is required.")
	default:
		return req, true
	}
	return req, false
}

// NewTradeResponse converts a confirmation for output
func NewTradeResponse(c ledger.TradeConfirmation) TradeResponse {
	return TradeResponse{
		Investor:       c.Investor,
		Symbol:         c.Symbol,
		Side:           string(c.Side),
		Shares:         c.Shares,
		Price:          domain.RoundCents(c.Price),
		Total:          domain.RoundCents(c.Total),
		AsOf:           c.AsOf,
		PriceAvailable: c.PriceAvailable,
		Message:        c.Message,
	}
}

package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers portfolio and stock risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolios/{investorName}", func(r chi.Router) {
		r.Get("/", h.HandleGetPortfolio)
		r.Get("/risk", h.HandleGetPortfolioRisk)
		r.Get("/report", h.HandleGetReport)
	})

	r.Get("/stocks/{symbol}/risk", h.HandleGetStockRisk)
}

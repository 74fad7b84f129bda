package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers stock listing and price maintenance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stocks", h.HandleListStocks)
	r.Post("/stocks/{symbol}/profile", h.HandleRefreshProfile)
	r.Post("/prices/refresh", h.HandleRefreshPrices)
}

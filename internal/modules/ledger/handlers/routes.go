package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers investor and trade routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/investors", h.HandleRegisterInvestor)

	r.Route("/trades", func(r chi.Router) {
		r.Post("/buy", h.HandleBuy)
		r.Post("/sell", h.HandleSell)
	})
}

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aristath/stockledger/internal/httpapi"
)

// handleHealth pings the ledger database. With ?deep=1 it also runs the
// integrity check (sqlite) or a probe query (postgres).
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	check := s.container.LedgerDB.QuickCheck
	if r.URL.Query().Get("deep") == "1" {
		check = s.container.LedgerDB.HealthCheck
	}

	if err := check(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Health check failed")
		httpapi.WriteJSON(w, s.log, http.StatusServiceUnavailable, map[string]interface{}{
			"status":  "unhealthy",
			"service": "stockledger",
			"error":   "ledger database unreachable",
		})
		return
	}

	httpapi.WriteJSON(w, s.log, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "stockledger",
	})
}

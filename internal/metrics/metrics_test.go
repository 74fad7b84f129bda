package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTrade(t *testing.T) {
	m := New()

	m.RecordTrade(domain.TradeSideBuy, "ok")
	m.RecordTrade(domain.TradeSideBuy, "ok")
	m.RecordTrade(domain.TradeSideSell, "failed")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TradesTotal.WithLabelValues("BUY", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TradesTotal.WithLabelValues("SELL", "failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.TradesTotal.WithLabelValues("SELL", "ok")))
}

func TestRecordQuote(t *testing.T) {
	m := New()

	m.RecordQuote("ok")
	m.RecordQuote("unavailable")
	m.RecordQuote("unavailable")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotesTotal.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuotesTotal.WithLabelValues("unavailable")))
}

func TestRecordRefresh(t *testing.T) {
	m := New()

	m.RecordRefresh(3, 1)
	m.RecordRefresh(2, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RefreshRunsTotal))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RefreshedSymbols.WithLabelValues("updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshedSymbols.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.LastRefreshFailed))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/portfolios/{investorName}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, name := range []string{"Alice", "Bob"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolios/"+name, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
	out := scrape(t, m)
	assert.Contains(t, out, `stockledger_http_request_duration_seconds_count{method="GET",route="/api/portfolios/{investorName}",status="200"} 2`)
}

func TestHandler_ExposesRegistry(t *testing.T) {
	m := New()
	m.RecordQuote("ok")

	out := scrape(t, m)

	assert.Contains(t, out, `stockledger_quotes_total{outcome="ok"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

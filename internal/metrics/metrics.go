// Package metrics exposes ledger counters and HTTP latency to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stockledger"

// Metrics holds the Prometheus collectors for the ledger on a private registry
type Metrics struct {
	registry *prometheus.Registry

	TradesTotal       *prometheus.CounterVec // labels: side, outcome
	QuotesTotal       *prometheus.CounterVec // labels: outcome
	RefreshRunsTotal  prometheus.Counter
	RefreshedSymbols  *prometheus.CounterVec // labels: result
	LastRefreshFailed prometheus.Gauge
	HTTPDuration      *prometheus.HistogramVec // labels: method, route, status
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		TradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Buy and sell attempts by outcome",
		}, []string{"side", "outcome"}),

		QuotesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Quote provider lookups by outcome",
		}, []string{"outcome"}),

		RefreshRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_refresh_runs_total",
			Help:      "Completed or interrupted price refresh runs",
		}),

		RefreshedSymbols: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_refresh_symbols_total",
			Help:      "Symbols processed by price refresh runs",
		}, []string{"result"}),

		LastRefreshFailed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "price_refresh_last_failed",
			Help:      "Symbols that failed in the most recent refresh run",
		}),

		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		m.TradesTotal,
		m.QuotesTotal,
		m.RefreshRunsTotal,
		m.RefreshedSymbols,
		m.LastRefreshFailed,
		m.HTTPDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry backing these collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTrade counts a buy or sell by outcome ("ok" or "failed")
func (m *Metrics) RecordTrade(side domain.TradeSide, outcome string) {
	m.TradesTotal.WithLabelValues(string(side), outcome).Inc()
}

// RecordQuote counts a quote lookup
func (m *Metrics) RecordQuote(outcome string) {
	m.QuotesTotal.WithLabelValues(outcome).Inc()
}

// RecordRefresh counts one refresh run
func (m *Metrics) RecordRefresh(updated, failed int) {
	m.RefreshRunsTotal.Inc()
	m.RefreshedSymbols.WithLabelValues("updated").Add(float64(updated))
	m.RefreshedSymbols.WithLabelValues("failed").Add(float64(failed))
	m.LastRefreshFailed.Set(float64(failed))
}

// Middleware observes request latency labelled by the matched chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

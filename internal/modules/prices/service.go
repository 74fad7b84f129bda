// Package prices refreshes stored stock prices and company profiles from market data providers.
package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Store is the subset of the ledger store used by price maintenance
type Store interface {
	FindStockBySymbol(ctx context.Context, symbol string) (*domain.Stock, error)
	UpdateStockPrice(ctx context.Context, symbol string, price decimal.Decimal) error
	UpdateStockProfile(ctx context.Context, profile domain.StockProfile) error
	ListStocks(ctx context.Context) ([]domain.Stock, error)
	ListAllStockSymbols(ctx context.Context) ([]string, error)
}

// RefreshSummary reports one run of RefreshAllPrices
type RefreshSummary struct {
	RunID      uuid.UUID `json:"run_id"`
	Total      int       `json:"total"`
	Updated    []string  `json:"updated"`
	Failed     []string  `json:"failed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Service keeps stored stock data current
type Service struct {
	store    Store
	quotes   domain.QuoteProvider
	profiles domain.ProfileProvider
	metrics  domain.MetricsRecorder
	log      zerolog.Logger
}

// NewService creates a new price service
func NewService(store Store, quotes domain.QuoteProvider, profiles domain.ProfileProvider, log zerolog.Logger) *Service {
	return &Service{
		store:    store,
		quotes:   quotes,
		profiles: profiles,
		log:      log.With().Str("service", "prices").Logger(),
	}
}

// SetMetrics attaches a recorder for refresh outcomes
func (s *Service) SetMetrics(m domain.MetricsRecorder) {
	s.metrics = m
}

// RefreshAllPrices fetches a quote for every stored symbol and overwrites the stored price.
// Symbols are processed one at a time; a failed symbol keeps its previous price.
// On context cancellation the partial summary is returned together with the context error.
func (s *Service) RefreshAllPrices(ctx context.Context) (RefreshSummary, error) {
	summary := RefreshSummary{
		RunID:     uuid.New(),
		Updated:   []string{},
		Failed:    []string{},
		StartedAt: time.Now().UTC(),
	}
	log := s.log.With().Str("run_id", summary.RunID.String()).Logger()

	symbols, err := s.store.ListAllStockSymbols(ctx)
	if err != nil {
		summary.FinishedAt = time.Now().UTC()
		return summary, fmt.Errorf("failed to list stock symbols: %w", err)
	}
	summary.Total = len(symbols)
	log.Info().Int("symbols", len(symbols)).Msg("Starting price refresh")

	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			s.recordRefresh(summary)
			log.Warn().Err(err).Int("updated", len(summary.Updated)).Msg("Price refresh interrupted")
			return summary, err
		}

		quote, err := s.quotes.GetQuote(ctx, symbol)
		if err != nil {
			log.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable, keeping stored price")
			summary.Failed = append(summary.Failed, symbol)
			continue
		}

		if err := s.store.UpdateStockPrice(ctx, symbol, quote.Price); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("Failed to store refreshed price")
			summary.Failed = append(summary.Failed, symbol)
			continue
		}
		summary.Updated = append(summary.Updated, symbol)
	}

	summary.FinishedAt = time.Now().UTC()
	s.recordRefresh(summary)

	log.Info().
		Int("updated", len(summary.Updated)).
		Int("failed", len(summary.Failed)).
		Dur("duration", summary.FinishedAt.Sub(summary.StartedAt)).
		Msg("Price refresh completed")

	return summary, nil
}

// RefreshStockProfile replaces the stock's descriptive fields with the provider's company overview
func (s *Service) RefreshStockProfile(ctx context.Context, symbol string) (domain.Stock, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return domain.Stock{}, domain.NewLedgerError(domain.ErrInvalidRequest, nil, "Stock symbol is required.")
	}

	stock, err := s.store.FindStockBySymbol(ctx, symbol)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("failed to load stock: %w", err)
	}
	if stock == nil {
		return domain.Stock{}, domain.StockNotFound(symbol)
	}

	profile, err := s.profiles.GetCompanyOverview(ctx, symbol)
	if err != nil {
		return domain.Stock{}, domain.NewLedgerError(domain.ErrProfileUnavailable, err,
			"Company profile for %s is unavailable.", symbol)
	}
	profile.Symbol = symbol

	if err := s.store.UpdateStockProfile(ctx, *profile); err != nil {
		return domain.Stock{}, fmt.Errorf("failed to store profile: %w", err)
	}

	stock.Company = profile.Company
	stock.MarketCap = profile.MarketCap
	stock.PERatio = profile.PERatio
	stock.Beta = profile.Beta

	s.log.Info().
		Str("symbol", symbol).
		Str("company", stock.Company).
		Bool("has_beta", stock.Beta.Valid).
		Msg("Stock profile refreshed")

	return *stock, nil
}

// ListStocks returns every stored stock ordered by symbol
func (s *Service) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	stocks, err := s.store.ListStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stocks: %w", err)
	}
	if stocks == nil {
		stocks = []domain.Stock{}
	}
	return stocks, nil
}

func (s *Service) recordRefresh(summary RefreshSummary) {
	if s.metrics != nil {
		s.metrics.RecordRefresh(len(summary.Updated), len(summary.Failed))
	}
}

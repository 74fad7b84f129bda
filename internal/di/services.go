package di

import (
	"fmt"

	"github.com/aristath/stockledger/internal/clients/alphavantage"
	"github.com/aristath/stockledger/internal/config"
	"github.com/aristath/stockledger/internal/metrics"
	"github.com/aristath/stockledger/internal/modules/ledger"
	"github.com/aristath/stockledger/internal/modules/portfolio"
	"github.com/aristath/stockledger/internal/modules/prices"
	"github.com/rs/zerolog"
)

// InitializeServices creates the quote client, metrics and business services
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	if container == nil || container.LedgerRepo == nil {
		return fmt.Errorf("repositories must be initialized before services")
	}

	container.Metrics = metrics.New()

	container.QuoteClient = alphavantage.NewClientWithOptions(cfg.AlphaVantage.APIKey, alphavantage.Options{
		BaseURL:           cfg.AlphaVantage.BaseURL,
		DailyLimit:        cfg.AlphaVantage.DailyLimit,
		RequestsPerMinute: cfg.AlphaVantage.RequestsPerMinute,
		Timeout:           cfg.AlphaVantage.Timeout,
	}, log)
	container.QuoteClient.SetMetrics(container.Metrics)

	if cfg.AlphaVantage.APIKey == "" {
		log.Warn().Msg("ALPHAVANTAGE_API_KEY not set, quotes and profiles will be unavailable")
	}

	container.LedgerService = ledger.NewService(container.LedgerRepo, container.QuoteClient, log)
	container.LedgerService.SetMetrics(container.Metrics)

	container.PortfolioService = portfolio.NewService(container.LedgerRepo, log)

	container.PricesService = prices.NewService(container.LedgerRepo, container.QuoteClient, container.QuoteClient, log)
	container.PricesService.SetMetrics(container.Metrics)

	log.Debug().Msg("Services initialized")
	return nil
}

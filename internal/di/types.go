// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/stockledger/internal/clients/alphavantage"
	"github.com/aristath/stockledger/internal/database"
	"github.com/aristath/stockledger/internal/metrics"
	"github.com/aristath/stockledger/internal/modules/ledger"
	"github.com/aristath/stockledger/internal/modules/portfolio"
	"github.com/aristath/stockledger/internal/modules/prices"
	"github.com/aristath/stockledger/internal/scheduler"
)

// Container holds all application dependencies.
// It is created by Wire() and shared by the HTTP server, the scheduler and the CLI.
type Container struct {
	// Databases
	LedgerDB *database.DB

	// Repositories
	LedgerRepo *ledger.Repository

	// Clients
	QuoteClient *alphavantage.Client

	// Observability
	Metrics *metrics.Metrics

	// Services
	LedgerService    *ledger.Service
	PortfolioService *portfolio.Service
	PricesService    *prices.Service
}

// Close releases the container's databases
func (c *Container) Close() error {
	if c == nil || c.LedgerDB == nil {
		return nil
	}
	return c.LedgerDB.Close()
}

// JobInstances holds the scheduler jobs so they can also be triggered on demand
type JobInstances struct {
	RefreshPrices       scheduler.Job
	CheckWALCheckpoints scheduler.Job
}

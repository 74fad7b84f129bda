package scheduler

import (
	"context"

	"github.com/aristath/stockledger/internal/modules/prices"
	"github.com/rs/zerolog"
)

// PriceRefresher is the price service operation driven by RefreshPricesJob
type PriceRefresher interface {
	RefreshAllPrices(ctx context.Context) (prices.RefreshSummary, error)
}

// RefreshPricesJob refreshes the stored price of every known stock
type RefreshPricesJob struct {
	refresher PriceRefresher
	log       zerolog.Logger
}

// NewRefreshPricesJob creates a new RefreshPricesJob
func NewRefreshPricesJob(refresher PriceRefresher) *RefreshPricesJob {
	return &RefreshPricesJob{
		refresher: refresher,
		log:       zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *RefreshPricesJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *RefreshPricesJob) Name() string {
	return "refresh_prices"
}

// Run executes one refresh pass. Symbols without a quote are logged, not returned as an error.
func (j *RefreshPricesJob) Run(ctx context.Context) error {
	summary, err := j.refresher.RefreshAllPrices(ctx)
	if err != nil {
		return err
	}

	if len(summary.Failed) > 0 {
		j.log.Warn().
			Str("run_id", summary.RunID.String()).
			Strs("failed", summary.Failed).
			Msg("Some prices were not refreshed")
	}
	return nil
}

package di

import (
	"fmt"

	"github.com/aristath/stockledger/internal/config"
	"github.com/aristath/stockledger/internal/scheduler"
	"github.com/rs/zerolog"
)

// walCheckSchedule runs the WAL check hourly
const walCheckSchedule = "0 0 * * * *"

// RegisterJobs creates the background jobs and, when a scheduler is given, registers them on it.
// The price refresh job is only scheduled when PriceRefreshSchedule is set.
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	if container == nil || container.PricesService == nil {
		return nil, fmt.Errorf("services must be initialized before jobs")
	}

	refresh := scheduler.NewRefreshPricesJob(container.PricesService)
	refresh.SetLogger(log.With().Str("job", refresh.Name()).Logger())

	walCheck := scheduler.NewCheckWALCheckpointsJob(container.LedgerDB)
	walCheck.SetLogger(log.With().Str("job", walCheck.Name()).Logger())

	instances := &JobInstances{
		RefreshPrices:       refresh,
		CheckWALCheckpoints: walCheck,
	}

	if sched == nil {
		return instances, nil
	}

	if cfg.PriceRefreshSchedule != "" {
		if err := sched.AddJob(cfg.PriceRefreshSchedule, refresh); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", refresh.Name(), err)
		}
	} else {
		log.Info().Msg("PRICE_REFRESH_SCHEDULE not set, scheduled price refresh disabled")
	}

	if container.LedgerDB.Driver().Dialect() == "sqlite" {
		if err := sched.AddJob(walCheckSchedule, walCheck); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", walCheck.Name(), err)
		}
	}

	return instances, nil
}

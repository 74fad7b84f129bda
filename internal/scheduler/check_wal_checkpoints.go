package scheduler

import (
	"context"

	"github.com/aristath/stockledger/internal/database"
	"github.com/rs/zerolog"
)

// walFramesWarnThreshold is the WAL size, in frames, above which a warning is logged
const walFramesWarnThreshold = 1000

// CheckWALCheckpointsJob runs a passive WAL checkpoint on sqlite ledgers and reports WAL growth
type CheckWALCheckpointsJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewCheckWALCheckpointsJob creates a new CheckWALCheckpointsJob
func NewCheckWALCheckpointsJob(db *database.DB) *CheckWALCheckpointsJob {
	return &CheckWALCheckpointsJob{
		db:  db,
		log: zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *CheckWALCheckpointsJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckWALCheckpointsJob) Name() string {
	return "check_wal_checkpoints"
}

// Run executes the check. Postgres ledgers and a nil database are skipped.
func (j *CheckWALCheckpointsJob) Run(ctx context.Context) error {
	if j.db == nil || j.db.Driver().Dialect() != "sqlite" {
		return nil
	}

	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, frames, checkpointed int
	err := j.db.Conn().QueryRowContext(ctx, "PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
	if err != nil {
		j.log.Warn().
			Err(err).
			Str("database", j.db.Name()).
			Msg("Failed to check WAL checkpoint")
		return err
	}

	if frames > walFramesWarnThreshold {
		j.log.Warn().
			Str("database", j.db.Name()).
			Int("wal_frames", frames).
			Int("checkpointed", checkpointed).
			Msg("WAL file is large, checkpoint may be needed")
	} else {
		j.log.Debug().
			Str("database", j.db.Name()).
			Int("wal_frames", frames).
			Int("busy", busy).
			Msg("WAL checkpoint status OK")
	}
	return nil
}

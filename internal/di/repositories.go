package di

import (
	"fmt"

	"github.com/aristath/stockledger/internal/modules/ledger"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the data access layer
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil || container.LedgerDB == nil {
		return fmt.Errorf("container has no ledger database")
	}

	container.LedgerRepo = ledger.NewRepository(container.LedgerDB.Conn(), log)

	log.Debug().Msg("Repositories initialized")
	return nil
}

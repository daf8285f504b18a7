package bootstrap

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/database/memory"
	"github.com/osse101/RaceBot_Go/internal/database/postgres"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

// Repositories holds all repository implementations used by the application
type Repositories struct {
	Ledger   repository.Ledger
	Keys     repository.Keys
	Races    repository.Races
	Activity activitylog.Repository
}

// InitializeRepositories creates the PostgreSQL-backed repositories
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	slog.Info(LogMsgUsingPostgresStore)
	return &Repositories{
		Ledger:   postgres.NewLedgerRepository(dbPool),
		Keys:     postgres.NewKeyRepository(dbPool),
		Races:    postgres.NewRaceRepository(dbPool),
		Activity: postgres.NewActivityRepository(dbPool),
	}
}

// InitializeMemoryRepositories creates repositories over a single in-memory
// store so ledger, key and activity writes share one transaction model
func InitializeMemoryRepositories(store *memory.Store) *Repositories {
	slog.Warn(LogMsgUsingMemoryStore)
	return &Repositories{
		Ledger:   store.Ledger(),
		Keys:     store.Keys(),
		Races:    store.Races(),
		Activity: store.Activity(),
	}
}

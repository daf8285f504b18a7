package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// Settlement phases claimed once per race
const (
	PhaseBets   = "bets"
	PhasePayout = "payout"
)

// Ledger defines the interface for balance and audit persistence
type Ledger interface {
	GetBalance(ctx context.Context, accountID string) (int64, error)
	BeginTx(ctx context.Context) (LedgerTx, error)
}

// LedgerTx extends Tx with balance mutations. Every mutation made through it
// must be paired with a transaction row and an activity row before Commit.
type LedgerTx interface {
	Tx // Commit, Rollback

	// GetBalanceForUpdate locks the account row, creating it with the default
	// starting balance when absent.
	GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error)
	AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error)
	RecordTransaction(ctx context.Context, txn domain.Transaction) error
	RecordActivity(ctx context.Context, entry domain.ActivityLog) error

	// ClaimRacePhase records that a settlement phase ran for the race.
	// It returns false when the phase was already claimed.
	ClaimRacePhase(ctx context.Context, raceID uuid.UUID, phase string) (bool, error)
}

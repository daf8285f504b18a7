// Package mocks provides testify mocks for the repository interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

// Ledger is a mock implementation of repository.Ledger
type Ledger struct {
	mock.Mock
}

func (m *Ledger) GetBalance(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Ledger) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.LedgerTx), args.Error(1)
}

// LedgerTx is a mock implementation of repository.LedgerTx
type LedgerTx struct {
	mock.Mock
}

func (m *LedgerTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *LedgerTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *LedgerTx) GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerTx) AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	args := m.Called(ctx, accountID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *LedgerTx) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *LedgerTx) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *LedgerTx) ClaimRacePhase(ctx context.Context, raceID uuid.UUID, phase string) (bool, error) {
	args := m.Called(ctx, raceID, phase)
	return args.Bool(0), args.Error(1)
}

// Keys is a mock implementation of repository.Keys
type Keys struct {
	mock.Mock
}

func (m *Keys) GetKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.KeyInventoryEntry), args.Error(1)
}

func (m *Keys) BeginTx(ctx context.Context) (repository.KeysTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.KeysTx), args.Error(1)
}

func (m *Keys) BeginPurchaseTx(ctx context.Context) (repository.PurchaseTx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(repository.PurchaseTx), args.Error(1)
}

// KeysTx is a mock implementation of repository.KeysTx
type KeysTx struct {
	mock.Mock
}

func (m *KeysTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *KeysTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *KeysTx) GetOrCreateKeyEntry(ctx context.Context, userID string, tier domain.KeyTier) (*domain.KeyInventoryEntry, error) {
	args := m.Called(ctx, userID, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KeyInventoryEntry), args.Error(1)
}

func (m *KeysTx) IncrementKeyEntry(ctx context.Context, id int64, amount int) (*domain.KeyInventoryEntry, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.KeyInventoryEntry), args.Error(1)
}

func (m *KeysTx) ConsumeKey(ctx context.Context, userID string, tier domain.KeyTier) (bool, error) {
	args := m.Called(ctx, userID, tier)
	return args.Bool(0), args.Error(1)
}

func (m *KeysTx) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// PurchaseTx is a mock implementation of repository.PurchaseTx
type PurchaseTx struct {
	KeysTx
}

func (m *PurchaseTx) GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PurchaseTx) AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	args := m.Called(ctx, accountID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *PurchaseTx) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

// Races is a mock implementation of repository.Races
type Races struct {
	mock.Mock
}

func (m *Races) CreateRace(ctx context.Context, race *domain.Race) error {
	args := m.Called(ctx, race)
	return args.Error(0)
}

func (m *Races) UpdateRace(ctx context.Context, race *domain.Race) error {
	args := m.Called(ctx, race)
	return args.Error(0)
}

func (m *Races) GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Race), args.Error(1)
}

func (m *Races) GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Race), args.Error(1)
}

func (m *Races) ListUnsettledRaces(ctx context.Context, cutoff time.Time, limit int) ([]domain.Race, error) {
	args := m.Called(ctx, cutoff, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Race), args.Error(1)
}

package repository

import (
	"context"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// Keys defines the interface for key inventory persistence
type Keys interface {
	GetKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error)
	BeginTx(ctx context.Context) (KeysTx, error)

	// BeginPurchaseTx starts a transaction that spans the key inventory and
	// the account ledger, so a key is never credited without its debit.
	BeginPurchaseTx(ctx context.Context) (PurchaseTx, error)
}

// KeysTx extends Tx with key inventory mutations
type KeysTx interface {
	Tx // Commit, Rollback

	GetOrCreateKeyEntry(ctx context.Context, userID string, tier domain.KeyTier) (*domain.KeyInventoryEntry, error)
	IncrementKeyEntry(ctx context.Context, id int64, amount int) (*domain.KeyInventoryEntry, error)

	// ConsumeKey decrements the tier by one. It returns false, and changes
	// nothing, when the entry is absent or already at zero.
	ConsumeKey(ctx context.Context, userID string, tier domain.KeyTier) (bool, error)
	RecordActivity(ctx context.Context, entry domain.ActivityLog) error
}

// PurchaseTx is a KeysTx that can also debit the buyer
type PurchaseTx interface {
	KeysTx

	GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error)
	AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error)
	RecordTransaction(ctx context.Context, txn domain.Transaction) error
}

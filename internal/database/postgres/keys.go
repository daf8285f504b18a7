package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

const keyEntryColumns = `id, user_id, key_type, quantity, updated_at`

// KeyRepository implements repository.Keys for PostgreSQL
type KeyRepository struct {
	db *pgxpool.Pool
}

// NewKeyRepository creates a new key inventory repository
func NewKeyRepository(db *pgxpool.Pool) *KeyRepository {
	return &KeyRepository{db: db}
}

// GetKeys returns every non-empty key stack of a user
func (r *KeyRepository) GetKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+keyEntryColumns+`
		FROM key_inventory
		WHERE user_id = $1 AND quantity > 0
		ORDER BY key_type
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryKeys, err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, scanKeyEntry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanKeys, err)
	}
	return entries, nil
}

// BeginTx starts a transaction and returns a KeysTx
func (r *KeyRepository) BeginTx(ctx context.Context) (repository.KeysTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginKeyTransaction, err)
	}
	return &keysTx{pgTx: pgTx{tx: tx}}, nil
}

// BeginPurchaseTx starts a transaction covering both key_inventory and accounts
func (r *KeyRepository) BeginPurchaseTx(ctx context.Context) (repository.PurchaseTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginKeyTransaction, err)
	}
	shared := pgTx{tx: tx}
	return &purchaseTx{keysTx: keysTx{pgTx: shared}, ledger: ledgerTx{pgTx: shared}}, nil
}

func scanKeyEntry(row pgx.CollectableRow) (domain.KeyInventoryEntry, error) {
	var e domain.KeyInventoryEntry
	var tier string
	err := row.Scan(&e.ID, &e.UserID, &tier, &e.Quantity, &e.UpdatedAt)
	e.Tier = domain.KeyTier(tier)
	return e, err
}

// keysTx implements repository.KeysTx
type keysTx struct {
	pgTx
}

// GetOrCreateKeyEntry returns the locked stack for a tier, creating an empty one when absent
func (t *keysTx) GetOrCreateKeyEntry(ctx context.Context, userID string, tier domain.KeyTier) (*domain.KeyInventoryEntry, error) {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO key_inventory (user_id, key_type, quantity)
		VALUES ($1, $2, 0)
		ON CONFLICT (user_id, key_type) DO NOTHING
	`, userID, string(tier))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToCreateKeyEntry, err)
	}

	rows, err := t.tx.Query(ctx, `
		SELECT `+keyEntryColumns+`
		FROM key_inventory
		WHERE user_id = $1 AND key_type = $2
		FOR UPDATE
	`, userID, string(tier))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToReadKeyEntry, err)
	}
	entry, err := pgx.CollectExactlyOneRow(rows, scanKeyEntry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanKeyEntry, err)
	}
	return &entry, nil
}

// IncrementKeyEntry adds amount keys to a stack
func (t *keysTx) IncrementKeyEntry(ctx context.Context, id int64, amount int) (*domain.KeyInventoryEntry, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	rows, err := t.tx.Query(ctx, `
		UPDATE key_inventory
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING `+keyEntryColumns, id, amount)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToIncrementKeyEntry, err)
	}
	entry, err := pgx.CollectExactlyOneRow(rows, scanKeyEntry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToScanKeyEntry, err)
	}
	return &entry, nil
}

// ConsumeKey decrements a stack by one. The quantity guard in the WHERE
// clause keeps the stack from going negative under concurrent use.
func (t *keysTx) ConsumeKey(ctx context.Context, userID string, tier domain.KeyTier) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE key_inventory
		SET quantity = quantity - 1, updated_at = NOW()
		WHERE user_id = $1 AND key_type = $2 AND quantity > 0
	`, userID, string(tier))
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToConsumeKey, err)
	}
	return tag.RowsAffected() == 1, nil
}

// RecordActivity writes the feed row
func (t *keysTx) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	return insertActivity(ctx, t.tx, entry)
}

// purchaseTx implements repository.PurchaseTx on a single pgx.Tx
type purchaseTx struct {
	keysTx
	ledger ledgerTx
}

// GetBalanceForUpdate locks the buyer's account row
func (t *purchaseTx) GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	return t.ledger.GetBalanceForUpdate(ctx, accountID)
}

// AdjustBalance applies the purchase debit
func (t *purchaseTx) AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	return t.ledger.AdjustBalance(ctx, accountID, delta)
}

// RecordTransaction writes the key_purchase audit row
func (t *purchaseTx) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	return t.ledger.RecordTransaction(ctx, txn)
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

// LedgerRepository implements repository.Ledger for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// GetBalance returns the balance of an account. An account that has never
// been seen reports the starting balance without being created.
func (r *LedgerRepository) GetBalance(ctx context.Context, accountID string) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultStartingBalance, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToGetBalance, err)
	}
	return balance, nil
}

// BeginTx starts a transaction and returns a LedgerTx
func (r *LedgerRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToBeginLedgerTransaction, err)
	}
	return &ledgerTx{pgTx: pgTx{tx: tx}}, nil
}

// ledgerTx implements repository.LedgerTx
type ledgerTx struct {
	pgTx
}

// GetBalanceForUpdate locks the account row for the rest of the transaction
func (t *ledgerTx) GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	if err := ensureAccount(ctx, t.tx, accountID); err != nil {
		return 0, err
	}
	var balance int64
	err := t.tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToLockBalance, err)
	}
	return balance, nil
}

// AdjustBalance applies a signed delta. A debit that would leave the balance
// negative changes nothing and returns ErrInsufficientFunds.
func (t *ledgerTx) AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	if err := ensureAccount(ctx, t.tx, accountID); err != nil {
		return 0, err
	}
	var balance int64
	err := t.tx.QueryRow(ctx, `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance
	`, accountID, delta).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: account %s cannot absorb %d", domain.ErrInsufficientFunds, accountID, delta)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToAdjustBalance, err)
	}
	return balance, nil
}

// RecordTransaction writes the financial audit row
func (t *ledgerTx) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO transactions (user_id, type, amount, description, related_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
	`, txn.UserID, string(txn.Type), txn.Amount, txn.Description, txn.RelatedID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertTransaction, err)
	}
	return nil
}

// RecordActivity writes the feed row
func (t *ledgerTx) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	return insertActivity(ctx, t.tx, entry)
}

// ClaimRacePhase inserts the phase marker; the primary key rejects a second claim
func (t *ledgerTx) ClaimRacePhase(ctx context.Context, raceID uuid.UUID, phase string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
		INSERT INTO race_settlements (race_id, phase)
		VALUES ($1, $2)
		ON CONFLICT (race_id, phase) DO NOTHING
	`, raceID, phase)
	if err != nil {
		return false, fmt.Errorf("%s: %w", ErrMsgFailedToClaimRacePhase, err)
	}
	return tag.RowsAffected() == 1, nil
}

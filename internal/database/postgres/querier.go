package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx so helpers run
// inside or outside a transaction
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgTx adapts pgx.Tx to repository.Tx
type pgTx struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// insertActivity writes one activity feed row
func insertActivity(ctx context.Context, q querier, entry domain.ActivityLog) error {
	var details []byte
	if entry.Details != nil {
		var err error
		details, err = json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToMarshalActivityDetails, err)
		}
	}

	_, err := q.Exec(ctx, `
		INSERT INTO activity_log (type, user_id, target_id, details)
		VALUES ($1, $2, NULLIF($3, ''), $4)
	`, entry.Type, entry.UserID, entry.TargetID, details)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToInsertActivity, err)
	}
	return nil
}

// ensureAccount creates the account with the starting balance when absent
func ensureAccount(ctx context.Context, q querier, accountID string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (id, balance)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING
	`, accountID, domain.DefaultStartingBalance)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedToEnsureAccount, err)
	}
	return nil
}

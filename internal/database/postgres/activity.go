package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/domain"
)

type activityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new PostgreSQL activity feed repository
func NewActivityRepository(db *pgxpool.Pool) activitylog.Repository {
	return &activityRepository{db: db}
}

// RecordActivity stores one feed entry
func (r *activityRepository) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	return insertActivity(ctx, r.db, entry)
}

// ListActivity retrieves entries based on filter criteria
func (r *activityRepository) ListActivity(ctx context.Context, filter activitylog.Filter) ([]domain.ActivityLog, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT id, type, user_id, COALESCE(target_id, ''), details, created_at
		FROM activity_log
		WHERE 1=1`)

	args := []interface{}{}
	argNum := 1

	if filter.UserID != "" {
		fmt.Fprintf(&queryBuilder, " AND user_id = $%d", argNum)
		args = append(args, filter.UserID)
		argNum++
	}

	if filter.Type != "" {
		fmt.Fprintf(&queryBuilder, " AND type = $%d", argNum)
		args = append(args, filter.Type)
		argNum++
	}

	if filter.Since != nil {
		fmt.Fprintf(&queryBuilder, " AND created_at >= $%d", argNum)
		args = append(args, *filter.Since)
		argNum++
	}

	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		fmt.Fprintf(&queryBuilder, " LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedToQueryActivity, err)
	}
	return pgx.CollectRows(rows, scanActivity)
}

// CleanupOldActivity removes entries older than the specified number of days
func (r *activityRepository) CleanupOldActivity(ctx context.Context, retentionDays int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM activity_log
		WHERE created_at < NOW() - make_interval(days => $1)
	`, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMsgFailedToCleanupActivity, err)
	}
	return tag.RowsAffected(), nil
}

func scanActivity(row pgx.CollectableRow) (domain.ActivityLog, error) {
	var a domain.ActivityLog
	var details []byte
	if err := row.Scan(&a.ID, &a.Type, &a.UserID, &a.TargetID, &details, &a.CreatedAt); err != nil {
		return a, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &a.Details); err != nil {
			return a, fmt.Errorf("%s: %w", ErrMsgFailedToDecodeActivityDetails, err)
		}
	}
	return a, nil
}

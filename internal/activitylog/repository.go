package activitylog

import (
	"context"
	"time"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// Filter narrows feed queries
type Filter struct {
	UserID string
	Type   string
	Since  *time.Time
	Limit  int
}

// Repository defines the interface for activity feed storage
type Repository interface {
	// RecordActivity stores one feed entry
	RecordActivity(ctx context.Context, entry domain.ActivityLog) error

	// ListActivity returns entries matching the filter, newest first
	ListActivity(ctx context.Context, filter Filter) ([]domain.ActivityLog, error)

	// CleanupOldActivity removes entries older than the specified number of days
	CleanupOldActivity(ctx context.Context, retentionDays int) (int64, error)
}

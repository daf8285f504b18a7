package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// Races defines the interface for race record persistence
type Races interface {
	CreateRace(ctx context.Context, race *domain.Race) error
	UpdateRace(ctx context.Context, race *domain.Race) error
	GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error)
	GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error)
	// ListUnsettledRaces returns staked races still Resolved whose bets phase
	// was claimed, created before cutoff, oldest first
	ListUnsettledRaces(ctx context.Context, cutoff time.Time, limit int) ([]domain.Race, error)
}

// Package rewards rolls the bonus key drop granted after a settled race.
package rewards

import (
	"context"
	"fmt"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/repository"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// DropRule is a binary gate followed, on a hit, by a tier roll
type DropRule struct {
	ChancePercent float64
	Tiers         *weighted.Table[domain.KeyTier]
	Source        domain.DropSource
}

// Drop rules per race outcome. A PvP loss has no rule and never drops.
var (
	PvPWinRule = DropRule{
		ChancePercent: 5,
		Tiers: weighted.MustTable([]weighted.Outcome[domain.KeyTier]{
			{Label: domain.KeyStandard, Weight: 65},
			{Label: domain.KeyPremium, Weight: 25},
			{Label: domain.KeyLegendary, Weight: 8},
			{Label: domain.KeyMythic, Weight: 2},
		}),
		Source: domain.DropSourceRaceWin,
	}

	SoloWinRule = DropRule{
		ChancePercent: 8,
		Tiers: weighted.MustTable([]weighted.Outcome[domain.KeyTier]{
			{Label: domain.KeyStandard, Weight: 70},
			{Label: domain.KeyPremium, Weight: 20},
			{Label: domain.KeyLegendary, Weight: 9},
			{Label: domain.KeyMythic, Weight: 1},
		}),
		Source: domain.DropSourceRaceWin,
	}

	SoloLossRule = DropRule{
		ChancePercent: 3,
		Tiers: weighted.MustTable([]weighted.Outcome[domain.KeyTier]{
			{Label: domain.KeyStandard, Weight: 1},
		}),
		Source: domain.DropSourceRaceConsolation,
	}
)

// RuleFor returns the drop rule for a race outcome from the player's point of view
func RuleFor(kind domain.RaceKind, won bool) (DropRule, bool) {
	switch {
	case kind == domain.RaceKindPvP && won:
		return PvPWinRule, true
	case kind == domain.RaceKindSolo && won:
		return SoloWinRule, true
	case kind == domain.RaceKindSolo:
		return SoloLossRule, true
	}
	return DropRule{}, false
}

// Roll applies the gate and, on a hit, draws a tier. A miss consumes exactly one draw.
func (r DropRule) Roll(rnd weighted.Rand) (domain.KeyTier, bool) {
	if !weighted.Chance(rnd, r.ChancePercent) {
		return "", false
	}
	return r.Tiers.Pick(rnd), true
}

// Resolver decides and grants race reward drops
type Resolver interface {
	// Resolve rolls the drop for a settled race and grants it. It returns nil
	// when nothing dropped.
	Resolve(ctx context.Context, race *domain.Race) (*domain.KeyDrop, error)
}

type resolver struct {
	repo repository.Keys
	bus  event.Bus
	rnd  weighted.Rand // Injectable for testing
}

// NewResolver creates a drop resolver. bus may be nil.
func NewResolver(repo repository.Keys, bus event.Bus) Resolver {
	return &resolver{
		repo: repo,
		bus:  bus,
		rnd:  weighted.Default,
	}
}

func (r *resolver) Resolve(ctx context.Context, race *domain.Race) (*domain.KeyDrop, error) {
	if race.Result == nil {
		return nil, fmt.Errorf("%w: race %s has no result", domain.ErrInvalidRaceTransition, race.ID)
	}

	// Only the human player side is eligible; in PvP only the winner rolls
	recipient := race.ChallengerID
	won := race.Result.ChallengerWon()
	if race.Kind == domain.RaceKindPvP {
		recipient = race.WinnerID()
		won = true
	}

	rule, ok := RuleFor(race.Kind, won)
	if !ok {
		return nil, nil
	}
	tier, hit := rule.Roll(r.rnd)
	if !hit {
		return nil, nil
	}

	drop := &domain.KeyDrop{
		UserID: recipient,
		Tier:   tier,
		Source: rule.Source,
		Track:  race.Track,
	}
	if err := r.grant(ctx, drop); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("Race key dropped",
		"race_id", race.ID,
		"user_id", drop.UserID,
		"key_type", drop.Tier,
		"source", drop.Source)

	if r.bus != nil {
		if err := r.bus.Publish(ctx, event.NewKeyDroppedEvent(*drop)); err != nil {
			logger.FromContext(ctx).Warn("Failed to publish key drop event", "error", err)
		}
	}
	return drop, nil
}

func (r *resolver) grant(ctx context.Context, drop *domain.KeyDrop) error {
	tx, err := r.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	entry, err := tx.GetOrCreateKeyEntry(ctx, drop.UserID, drop.Tier)
	if err != nil {
		return fmt.Errorf("failed to get key entry: %w", err)
	}
	if _, err := tx.IncrementKeyEntry(ctx, entry.ID, 1); err != nil {
		return fmt.Errorf("failed to increment key entry: %w", err)
	}

	if err := tx.RecordActivity(ctx, domain.ActivityLog{
		Type:   domain.ActivityKeyEarned,
		UserID: drop.UserID,
		Details: map[string]interface{}{
			"keyType": string(drop.Tier),
			"source":  string(drop.Source),
			"track":   string(drop.Track),
		},
	}); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

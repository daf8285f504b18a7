// Package activitylog records the user activity feed from bus events and
// prunes it on a schedule.
package activitylog

import (
	"context"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/logger"
)

// Service handles activity feed business logic
type Service interface {
	// Subscribe registers the feed handlers on the bus
	Subscribe(bus event.Bus) error

	// ListActivity returns the most recent feed entries of a user
	ListActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error)

	// CleanupOldActivity removes entries older than the retention period
	CleanupOldActivity(ctx context.Context, retentionDays int) (int64, error)
}

type service struct {
	repo Repository
}

// NewService creates a new activity feed service
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// raceActivityTypes maps a completed race to its feed entry type
var raceActivityTypes = map[domain.RaceKind]string{
	domain.RaceKindPvP:      domain.ActivityRaceCompleted,
	domain.RaceKindSolo:     domain.ActivitySoloRaceCompleted,
	domain.RaceKindShowdown: domain.ActivityCarShowdown,
}

func (s *service) Subscribe(bus event.Bus) error {
	bus.Subscribe(event.RaceCompleted, s.handleRaceCompleted)
	bus.Subscribe(event.ChallengeExpired, s.handleChallengeExpired)
	return nil
}

func (s *service) handleRaceCompleted(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	payload, err := event.DecodePayload[event.RaceCompletedPayloadV1](evt.Payload)
	if err != nil {
		log.Warn(LogMsgDecodeFailed, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	activityType, ok := raceActivityTypes[payload.Kind]
	if !ok {
		log.Warn(LogMsgUnknownRaceKind, LogFieldType, evt.Type, "kind", payload.Kind)
		return nil
	}

	details := map[string]interface{}{
		DetailKeyKind:   string(payload.Kind),
		DetailKeyTrack:  string(payload.Track),
		DetailKeyWinner: string(payload.Winner),
		DetailKeyMargin: string(payload.Margin),
	}
	if payload.Kind != domain.RaceKindShowdown {
		details[DetailKeyBet] = payload.Bet
	}
	if payload.OpponentID != "" {
		details[DetailKeyOpponentID] = payload.OpponentID
	}

	return s.record(ctx, domain.ActivityLog{
		Type:     activityType,
		UserID:   payload.ChallengerID,
		TargetID: payload.RaceID,
		Details:  details,
	})
}

func (s *service) handleChallengeExpired(ctx context.Context, evt event.Event) error {
	payload, err := event.DecodePayload[event.ChallengeExpiredPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgDecodeFailed, LogFieldType, evt.Type, LogFieldError, err)
		return nil
	}

	return s.record(ctx, domain.ActivityLog{
		Type:     domain.ActivityChallengeExpired,
		UserID:   payload.ChallengerID,
		TargetID: payload.ChallengeID,
		Details: map[string]interface{}{
			DetailKeyChallengeID: payload.ChallengeID,
			DetailKeyOpponentID:  payload.OpponentID,
			DetailKeyTrack:       string(payload.Track),
			DetailKeyBet:         payload.Bet,
		},
	})
}

func (s *service) record(ctx context.Context, entry domain.ActivityLog) error {
	log := logger.FromContext(ctx)
	if err := s.repo.RecordActivity(ctx, entry); err != nil {
		log.Error(LogMsgFailedToLogEvent, LogFieldError, err, LogFieldType, entry.Type)
		return err
	}
	log.Debug(LogMsgActivityRecorded, LogFieldType, entry.Type, LogFieldUserID, entry.UserID)
	return nil
}

func (s *service) ListActivity(ctx context.Context, userID string, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)
	return s.repo.ListActivity(ctx, Filter{UserID: userID, Limit: limit})
}

func (s *service) CleanupOldActivity(ctx context.Context, retentionDays int) (int64, error) {
	return s.repo.CleanupOldActivity(ctx, retentionDays)
}

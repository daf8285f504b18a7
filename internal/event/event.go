package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata defines the type for event metadata
type Metadata interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if m, ok := e.Metadata.(map[string]interface{}); ok {
		return m[key]
	}
	return nil
}

// Race event types
const (
	RaceCompleted    Type = "race.completed"
	ChallengeExpired Type = "challenge.expired"
	KeyDropped       Type = "key.dropped"
)

// RaceCompletedPayloadV1 is published once a race has been resolved and settled
type RaceCompletedPayloadV1 struct {
	RaceID       string                  `json:"race_id"`
	Kind         domain.RaceKind         `json:"kind"`
	Track        domain.TrackType        `json:"track"`
	ChallengerID string                  `json:"challenger_id"`
	OpponentID   string                  `json:"opponent_id,omitempty"`
	WinnerID     string                  `json:"winner_id,omitempty"`
	Winner       domain.Side             `json:"winner"`
	Bet          int64                   `json:"bet"`
	Margin       domain.MarginDescriptor `json:"margin"`
	Timestamp    int64                   `json:"timestamp"`
}

// ChallengeExpiredPayloadV1 is published for each challenge removed by the sweep
type ChallengeExpiredPayloadV1 struct {
	ChallengeID  string           `json:"challenge_id"`
	ChallengerID string           `json:"challenger_id"`
	OpponentID   string           `json:"opponent_id"`
	Track        domain.TrackType `json:"track"`
	Bet          int64            `json:"bet"`
	Timestamp    int64            `json:"timestamp"`
}

// KeyDroppedPayloadV1 is published after a race reward key was granted
type KeyDroppedPayloadV1 struct {
	UserID    string            `json:"user_id"`
	KeyType   domain.KeyTier    `json:"key_type"`
	Source    domain.DropSource `json:"source"`
	Track     domain.TrackType  `json:"track"`
	Timestamp int64             `json:"timestamp"`
}

// NewRaceCompletedEvent creates a race completed event for a settled race
func NewRaceCompletedEvent(race *domain.Race) Event {
	payload := RaceCompletedPayloadV1{
		RaceID:       race.ID.String(),
		Kind:         race.Kind,
		Track:        race.Track,
		ChallengerID: race.ChallengerID,
		OpponentID:   race.OpponentID,
		WinnerID:     race.WinnerID(),
		Bet:          race.Bet,
		Timestamp:    time.Now().Unix(),
	}
	if race.Result != nil {
		payload.Winner = race.Result.Winner
		payload.Margin = race.Result.Margin
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    RaceCompleted,
		Payload: payload,
		Metadata: map[string]interface{}{
			"race_id": race.ID.String(),
		},
	}
}

// NewChallengeExpiredEvent creates a challenge expired event
func NewChallengeExpiredEvent(challengeID, challengerID, opponentID string, track domain.TrackType, bet int64) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    ChallengeExpired,
		Payload: ChallengeExpiredPayloadV1{
			ChallengeID:  challengeID,
			ChallengerID: challengerID,
			OpponentID:   opponentID,
			Track:        track,
			Bet:          bet,
			Timestamp:    time.Now().Unix(),
		},
	}
}

// NewKeyDroppedEvent creates a key dropped event
func NewKeyDroppedEvent(drop domain.KeyDrop) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    KeyDropped,
		Payload: KeyDroppedPayloadV1{
			UserID:    drop.UserID,
			KeyType:   drop.Tier,
			Source:    drop.Source,
			Track:     drop.Track,
			Timestamp: time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish runs every subscriber synchronously. All handlers run even when
// one fails; their errors are aggregated.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf(LogMsgHandlerErrorFormat, len(errs), event.Type, errors.Join(errs...))
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

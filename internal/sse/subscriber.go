package sse

import (
	"context"
	"log/slog"

	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/logger"
)

// Subscriber bridges the internal event bus to the hub
type Subscriber struct {
	hub *Hub
}

// NewSubscriber creates a new subscriber
func NewSubscriber(hub *Hub) *Subscriber {
	return &Subscriber{hub: hub}
}

// Subscribe registers the bus handlers
func (s *Subscriber) Subscribe(bus event.Bus) {
	bus.Subscribe(event.RaceCompleted, s.handleRaceCompleted)
	bus.Subscribe(event.ChallengeExpired, s.handleChallengeExpired)
	bus.Subscribe(event.KeyDropped, s.handleKeyDropped)

	slog.Info(LogMsgSubscribed, "types", []event.Type{event.RaceCompleted, event.ChallengeExpired, event.KeyDropped})
}

// Stream delivery is best effort, so handlers never return errors and a
// bad payload never triggers a bus retry.

func (s *Subscriber) handleRaceCompleted(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.RaceCompletedPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecode, "type", evt.Type, "error", err)
		return nil
	}
	s.broadcast(ctx, evt.Type, RaceFinishedPayload{
		RaceID:       p.RaceID,
		Kind:         p.Kind,
		Track:        p.Track,
		TrackName:    p.Track.DisplayName(),
		ChallengerID: p.ChallengerID,
		OpponentID:   p.OpponentID,
		WinnerID:     p.WinnerID,
		Bet:          p.Bet,
		Margin:       p.Margin,
	})
	return nil
}

func (s *Subscriber) handleChallengeExpired(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.ChallengeExpiredPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecode, "type", evt.Type, "error", err)
		return nil
	}
	s.broadcast(ctx, evt.Type, ChallengeExpiredPayload{
		ChallengeID:  p.ChallengeID,
		ChallengerID: p.ChallengerID,
		OpponentID:   p.OpponentID,
		Track:        p.Track,
		Bet:          p.Bet,
	})
	return nil
}

func (s *Subscriber) handleKeyDropped(ctx context.Context, evt event.Event) error {
	p, err := event.DecodePayload[event.KeyDroppedPayloadV1](evt.Payload)
	if err != nil {
		logger.FromContext(ctx).Warn(LogMsgPayloadDecode, "type", evt.Type, "error", err)
		return nil
	}
	s.broadcast(ctx, evt.Type, KeyDroppedPayload{
		UserID:  p.UserID,
		KeyType: p.KeyType,
		Source:  p.Source,
		Track:   p.Track,
	})
	return nil
}

func (s *Subscriber) broadcast(ctx context.Context, eventType event.Type, payload interface{}) {
	log := logger.FromContext(ctx)
	if !s.hub.Broadcast(string(eventType), payload) {
		log.Warn(LogMsgEventDropped, "type", eventType)
		return
	}
	log.Debug(LogMsgEventBroadcast, "type", eventType)
}

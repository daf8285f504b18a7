package metrics

import (
	"context"

	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all race events
func (e *EventMetricsCollector) Register(bus event.Bus) {
	for _, eventType := range []event.Type{
		event.RaceCompleted,
		event.ChallengeExpired,
		event.KeyDropped,
	} {
		bus.Subscribe(eventType, e.HandleEvent)
	}
}

// HandleEvent processes events and updates metrics. Undecodable payloads
// still count as published.
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.RaceCompleted:
		p, err := event.DecodePayload[event.RaceCompletedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadDecode, "type", evt.Type, "error", err)
			return nil
		}
		RacesCompleted.WithLabelValues(string(p.Kind), string(p.Track), string(p.Winner)).Inc()

	case event.ChallengeExpired:
		ChallengesExpired.Inc()

	case event.KeyDropped:
		p, err := event.DecodePayload[event.KeyDroppedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgEventPayloadDecode, "type", evt.Type, "error", err)
			return nil
		}
		KeysDropped.WithLabelValues(string(p.KeyType), string(p.Source)).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}

package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/metrics"
)

// EventHandlerDependencies holds what the event subscribers need
type EventHandlerDependencies struct {
	EventBus        event.Bus
	ActivityService activitylog.Service
}

// RegisterEventHandlers subscribes the metrics collector and the activity
// feed to the bus. Subscriptions must be in place before the first race runs.
func RegisterEventHandlers(deps EventHandlerDependencies) error {
	metrics.NewEventMetricsCollector().Register(deps.EventBus)
	slog.Info(LogMsgMetricsCollectorRegistered)

	if err := deps.ActivityService.Subscribe(deps.EventBus); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgFailedSubscribeActivity, err)
	}
	slog.Info(LogMsgActivityFeedSubscribed)

	return nil
}

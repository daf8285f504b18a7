package challenge

import (
	"context"
	"time"

	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/logger"
)

// SweepJob removes expired challenges and announces each one on the bus
type SweepJob struct {
	registry *Registry
	bus      event.Bus
	now      func() time.Time
}

// NewSweepJob creates a sweep job. bus may be nil.
func NewSweepJob(registry *Registry, bus event.Bus) *SweepJob {
	return &SweepJob{
		registry: registry,
		bus:      bus,
		now:      time.Now,
	}
}

// Process implements worker.Job
func (j *SweepJob) Process(ctx context.Context) error {
	expired := j.registry.Sweep(j.now())
	if len(expired) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)
	log.Info("Expired challenges swept", "count", len(expired))

	if j.bus == nil {
		return nil
	}
	for _, c := range expired {
		evt := event.NewChallengeExpiredEvent(c.ID.String(), c.ChallengerID, c.OpponentID, c.Track, c.Bet)
		if err := j.bus.Publish(ctx, evt); err != nil {
			log.Warn("Failed to publish challenge expiry", "challenge_id", c.ID, "error", err)
		}
	}
	return nil
}

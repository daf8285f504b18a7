// Package scheduler feeds recurring jobs into a worker pool.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/worker"
)

// Scheduler manages scheduled jobs. Interval jobs start ticking as soon as
// they are registered; cron jobs fire once Start has been called.
type Scheduler struct {
	workerPool *worker.Pool
	cron       *cron.Cron
	quit       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// New creates a new scheduler using the local time zone for cron specs
func New(pool *worker.Pool) *Scheduler {
	return NewWithLocation(pool, time.Local)
}

// NewWithLocation creates a scheduler evaluating cron specs in loc
func NewWithLocation(pool *worker.Pool, loc *time.Location) *Scheduler {
	return &Scheduler{
		workerPool: pool,
		cron:       cron.New(cron.WithLocation(loc)),
		quit:       make(chan struct{}),
	}
}

// Schedule registers a job to run at a fixed interval
func (s *Scheduler) Schedule(interval time.Duration, job worker.Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				// A full queue skips this tick rather than stalling the ticker
				s.workerPool.TryEnqueue(job)
			case <-s.quit:
				return
			}
		}
	}()
}

// ScheduleCron registers a job on a standard five-field cron spec
func (s *Scheduler) ScheduleCron(spec string, job worker.Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.workerPool.TryEnqueue(job)
	})
	if err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	logger.Debug("Cron job scheduled", "spec", spec, "job", fmt.Sprintf("%T", job))
	return nil
}

// Start starts the cron runner
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops all scheduled jobs and waits for the tickers to exit
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		<-s.cron.Stop().Done()
		close(s.quit)
		s.wg.Wait()
	})
}

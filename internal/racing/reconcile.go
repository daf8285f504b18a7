package racing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/logger"
)

// ReconcileUnsettled finishes staked races whose bets were taken but whose
// payout never committed. Only races created before cutoff are considered, so
// a pipeline still running is left alone. Each race is re-read under the
// participant locks before it is paid.
func (s *service) ReconcileUnsettled(ctx context.Context, cutoff time.Time) (int, error) {
	log := logger.FromContext(ctx)

	stuck, err := s.races.ListUnsettledRaces(ctx, cutoff, ReconcileBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unsettled races: %w", err)
	}

	reconciled := 0
	var errs []error
	for _, candidate := range stuck {
		ok, err := s.reconcileRace(ctx, candidate)
		if err != nil {
			log.Warn(LogMsgReconcileFailed, "race_id", candidate.ID, "error", err)
			errs = append(errs, err)
			continue
		}
		if ok {
			reconciled++
		}
	}
	return reconciled, errors.Join(errs...)
}

func (s *service) reconcileRace(ctx context.Context, candidate domain.Race) (bool, error) {
	unlock := s.locks.LockAll(lo.Compact([]string{candidate.ChallengerID, candidate.OpponentID})...)
	defer unlock()

	record, err := s.races.GetRace(ctx, candidate.ID)
	if err != nil {
		return false, err
	}
	if record.Status != domain.RaceStatusResolved || record.Result == nil {
		return false, nil
	}

	outcome := &RaceOutcome{Race: record, Ledger: []domain.LedgerEntry{}}
	payouts, err := s.settleWithRetry(ctx, record)
	if err != nil {
		return false, err
	}
	outcome.Ledger = append(outcome.Ledger, payouts...)

	if err := s.finish(ctx, outcome, true); err != nil {
		return false, err
	}

	logger.FromContext(ctx).Info(LogMsgRaceReconciled,
		"race_id", record.ID,
		"kind", record.Kind,
		"entries", len(payouts),
		"warnings", outcome.Warnings)
	return true, nil
}

// ReconcileJob periodically pays out races a failed pipeline left Resolved
type ReconcileJob struct {
	service Service
	grace   time.Duration
	now     func() time.Time
}

// NewReconcileJob creates a reconciliation job. A non-positive grace uses ReconcileGrace.
func NewReconcileJob(service Service, grace time.Duration) *ReconcileJob {
	if grace <= 0 {
		grace = ReconcileGrace
	}
	return &ReconcileJob{
		service: service,
		grace:   grace,
		now:     time.Now,
	}
}

// Process implements worker.Job
func (j *ReconcileJob) Process(ctx context.Context) error {
	count, err := j.service.ReconcileUnsettled(ctx, j.now().Add(-j.grace))
	if count > 0 || err != nil {
		logger.FromContext(ctx).Info(LogMsgReconcileCompleted, "reconciled", count, "error", err)
	}
	return err
}

// Package racing runs solo races, PvP challenges and showdowns end to end.
//
// A staked race follows one pipeline: lock the participants, persist the race
// record, debit the bets, resolve, persist the result, credit the payout, roll
// the key drop and announce the race on the event bus. Once the bets are
// debited the pipeline no longer honours cancellation, so a caller that goes
// away cannot leave money in limbo.
package racing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/osse101/RaceBot_Go/internal/challenge"
	"github.com/osse101/RaceBot_Go/internal/concurrency"
	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/gacha"
	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/metrics"
	"github.com/osse101/RaceBot_Go/internal/race"
	"github.com/osse101/RaceBot_Go/internal/repository"
	"github.com/osse101/RaceBot_Go/internal/rewards"
	"github.com/osse101/RaceBot_Go/internal/settlement"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

// SoloRaceRequest is a staked race against a generated AI car
type SoloRaceRequest struct {
	UserID string
	Track  domain.TrackType
	Bet    int64
	Car    domain.CarStats
}

// ChallengeRequest offers a staked race to another account
type ChallengeRequest struct {
	ChallengerID string
	OpponentID   string
	Track        domain.TrackType
	Bet          int64
	Car          domain.CarStats
}

// ShowdownRequest compares two cars without a stake. OpponentID may be empty.
type ShowdownRequest struct {
	ChallengerID  string
	OpponentID    string
	Track         domain.TrackType
	ChallengerCar domain.CarStats
	OpponentCar   domain.CarStats
}

// RaceOutcome is everything a finished race produced. Warnings list the side
// effects that failed after the money had already moved.
type RaceOutcome struct {
	Race           *domain.Race         `json:"race"`
	Ledger         []domain.LedgerEntry `json:"ledger"`
	Drop           *domain.KeyDrop      `json:"drop,omitempty"`
	OpponentRarity domain.Rarity        `json:"opponent_rarity,omitempty"`
	Warnings       []string             `json:"warnings,omitempty"`
}

// Resolver scores two cars on a track
type Resolver interface {
	Resolve(challenger, opponent domain.CarStats, track domain.TrackType, cfg race.Config) (*domain.RaceResult, error)
}

// Service defines the interface for race operations
type Service interface {
	RunSolo(ctx context.Context, req SoloRaceRequest) (*RaceOutcome, error)
	Challenge(ctx context.Context, req ChallengeRequest) (*challenge.Challenge, error)
	Accept(ctx context.Context, challengeID uuid.UUID, accepterID string, car domain.CarStats) (*RaceOutcome, error)
	Decline(ctx context.Context, challengeID uuid.UUID, userID string) error
	Showdown(ctx context.Context, req ShowdownRequest) (*RaceOutcome, error)
	GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error)
	GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error)
	// ReconcileUnsettled pays out staked races left Resolved before cutoff
	ReconcileUnsettled(ctx context.Context, cutoff time.Time) (int, error)
}

type service struct {
	engine     Resolver
	settlement settlement.Service
	rewards    rewards.Resolver
	races      repository.Races
	registry   *challenge.Registry
	locks      *concurrency.LockManager
	bus        event.Bus
	rnd        weighted.Rand // Injectable for testing

	settleRetryDelay time.Duration
	now              func() time.Time
}

// NewService creates a new race service. bus may be nil.
func NewService(engine Resolver, settlementSvc settlement.Service, resolver rewards.Resolver, races repository.Races, registry *challenge.Registry, locks *concurrency.LockManager, bus event.Bus) Service {
	return &service{
		engine:     engine,
		settlement: settlementSvc,
		rewards:    resolver,
		races:      races,
		registry:   registry,
		locks:      locks,
		bus:        bus,
		rnd:        weighted.Default,

		settleRetryDelay: SettleRetryDelay,
		now:              time.Now,
	}
}

func checkTrack(track domain.TrackType) error {
	if !track.Valid() {
		return &domain.UnknownTrackTypeError{Value: string(track)}
	}
	return nil
}

// RunSolo races the player against an AI car scaled from their own stats
func (s *service) RunSolo(ctx context.Context, req SoloRaceRequest) (*RaceOutcome, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if err := checkTrack(req.Track); err != nil {
		return nil, err
	}
	if err := s.settlement.ValidateBet(ctx, req.UserID, req.Bet); err != nil {
		return nil, err
	}

	unlock := s.locks.LockAll(req.UserID)
	defer unlock()

	record := domain.NewRace(domain.RaceKindSolo, req.Track, req.UserID, "", req.Bet)
	record.ChallengerCar = req.Car.Clamped()
	record.OpponentCar = race.GenerateOpponent(s.rnd, record.ChallengerCar)

	outcome, err := s.runStaked(ctx, record)
	if err != nil {
		return nil, err
	}
	outcome.OpponentRarity = gacha.RollRarity(s.rnd)

	logger.FromContext(ctx).Info(LogMsgSoloRaceCompleted,
		"race_id", record.ID,
		"user_id", req.UserID,
		"track", req.Track,
		"bet", req.Bet,
		"winner", record.Result.Winner)
	return outcome, nil
}

// Challenge registers a pending PvP race. Both balances must cover the bet now
// and are checked again on accept.
func (s *service) Challenge(ctx context.Context, req ChallengeRequest) (*challenge.Challenge, error) {
	if req.ChallengerID == "" || req.OpponentID == "" {
		return nil, fmt.Errorf("%w: both accounts are required", domain.ErrInvalidInput)
	}
	if req.ChallengerID == req.OpponentID {
		return nil, domain.ErrSelfChallenge
	}
	if err := checkTrack(req.Track); err != nil {
		return nil, err
	}
	if err := s.settlement.ValidateBet(ctx, req.ChallengerID, req.Bet); err != nil {
		return nil, err
	}
	if err := s.settlement.ValidateBet(ctx, req.OpponentID, req.Bet); err != nil {
		return nil, err
	}

	c := &challenge.Challenge{
		ChallengerID:  req.ChallengerID,
		OpponentID:    req.OpponentID,
		Track:         req.Track,
		Bet:           req.Bet,
		ChallengerCar: req.Car.Clamped(),
	}
	if err := s.registry.Add(c); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgChallengeIssued,
		"challenge_id", c.ID,
		"challenger_id", c.ChallengerID,
		"opponent_id", c.OpponentID,
		"track", c.Track,
		"bet", c.Bet,
		"expires_at", c.ExpiresAt)
	return c, nil
}

// Accept consumes the challenge and runs the PvP race
func (s *service) Accept(ctx context.Context, challengeID uuid.UUID, accepterID string, car domain.CarStats) (*RaceOutcome, error) {
	pending, err := s.registry.Get(challengeID)
	if err != nil {
		return nil, err
	}
	if pending.OpponentID != accepterID {
		return nil, domain.ErrNotChallengeTarget
	}
	// Take is the single point where concurrent accepts are decided
	pending, err = s.registry.Take(challengeID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.LockAll(pending.ChallengerID, pending.OpponentID)
	defer unlock()

	if err := s.settlement.ValidateBet(ctx, pending.ChallengerID, pending.Bet); err != nil {
		return nil, err
	}
	if err := s.settlement.ValidateBet(ctx, pending.OpponentID, pending.Bet); err != nil {
		return nil, err
	}

	record := domain.NewRace(domain.RaceKindPvP, pending.Track, pending.ChallengerID, pending.OpponentID, pending.Bet)
	record.ChallengerCar = pending.ChallengerCar
	record.OpponentCar = car.Clamped()

	outcome, err := s.runStaked(ctx, record)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgPvPRaceCompleted,
		"race_id", record.ID,
		"challenge_id", challengeID,
		"winner_id", record.WinnerID(),
		"track", record.Track,
		"bet", record.Bet)
	return outcome, nil
}

// Decline removes a pending challenge. Either participant may call it, and a
// challenge that is already gone is not an error.
func (s *service) Decline(ctx context.Context, challengeID uuid.UUID, userID string) error {
	pending, err := s.registry.Get(challengeID)
	if errors.Is(err, domain.ErrChallengeNotFound) || errors.Is(err, domain.ErrChallengeExpired) {
		return nil
	}
	if err != nil {
		return err
	}

	msg := LogMsgChallengeDeclined
	switch userID {
	case pending.OpponentID:
	case pending.ChallengerID:
		msg = LogMsgChallengeCancelled
	default:
		return domain.ErrNotChallengeTarget
	}

	if s.registry.Remove(challengeID) {
		logger.FromContext(ctx).Info(msg, "challenge_id", challengeID, "user_id", userID)
	}
	return nil
}

// Showdown compares two cars with no stake, no settlement and no drop
func (s *service) Showdown(ctx context.Context, req ShowdownRequest) (*RaceOutcome, error) {
	if req.ChallengerID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if err := checkTrack(req.Track); err != nil {
		return nil, err
	}

	record := domain.NewRace(domain.RaceKindShowdown, req.Track, req.ChallengerID, req.OpponentID, 0)
	record.ChallengerCar = req.ChallengerCar.Clamped()
	record.OpponentCar = req.OpponentCar.Clamped()

	if err := s.races.CreateRace(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}

	outcome := &RaceOutcome{Race: record, Ledger: []domain.LedgerEntry{}}
	if err := s.complete(ctx, outcome, race.ShowdownRace, false); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info(LogMsgShowdownCompleted,
		"race_id", record.ID,
		"user_id", req.ChallengerID,
		"track", req.Track,
		"winner", record.Result.Winner,
		"margin", record.Result.Margin)
	return outcome, nil
}

func (s *service) GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error) {
	return s.races.GetRace(ctx, id)
}

func (s *service) GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error) {
	if limit <= 0 {
		limit = DefaultRecentRacesLimit
	}
	return s.races.GetRecentRaces(ctx, userID, limit)
}

// runStaked persists the race, debits the bets and completes it. The caller
// holds the participant locks.
func (s *service) runStaked(ctx context.Context, record *domain.Race) (*RaceOutcome, error) {
	if err := s.races.CreateRace(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create race: %w", err)
	}

	bets, err := s.settlement.PlaceBets(ctx, record)
	if err != nil {
		return nil, err
	}

	// Money has moved; finish even if the caller goes away
	ctx = context.WithoutCancel(ctx)

	outcome := &RaceOutcome{Race: record, Ledger: bets}
	if err := s.complete(ctx, outcome, race.TimedRace, true); err != nil {
		return nil, err
	}
	return outcome, nil
}

// complete resolves the race and walks it through to Settled. Failures to save
// the record, grant the drop or publish are reported as warnings. A payout that
// still fails after its retries leaves the race Resolved for ReconcileUnsettled.
func (s *service) complete(ctx context.Context, outcome *RaceOutcome, cfg race.Config, staked bool) error {
	record := outcome.Race

	result, err := s.engine.Resolve(record.ChallengerCar, record.OpponentCar, record.Track, cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve race: %w", err)
	}
	if err := record.Advance(domain.RaceStatusScored); err != nil {
		return err
	}
	record.Result = result
	if err := record.Advance(domain.RaceStatusResolved); err != nil {
		return err
	}
	s.save(ctx, outcome)

	if staked {
		payouts, err := s.settleWithRetry(ctx, record)
		if errors.Is(err, errPayoutDeferred) {
			outcome.Warnings = lo.Uniq(append(outcome.Warnings, WarnPayoutDeferred))
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to settle race: %w", err)
		}
		outcome.Ledger = append(outcome.Ledger, payouts...)
	}

	return s.finish(ctx, outcome, staked)
}

// finish marks a paid-out race Settled, then grants the drop and announces it
func (s *service) finish(ctx context.Context, outcome *RaceOutcome, staked bool) error {
	log := logger.FromContext(ctx)
	record := outcome.Race

	if err := record.Advance(domain.RaceStatusSettled); err != nil {
		return err
	}
	settledAt := s.now()
	record.SettledAt = &settledAt
	s.save(ctx, outcome)

	if staked {
		drop, err := s.rewards.Resolve(ctx, record)
		if err != nil {
			log.Warn("Failed to grant race key drop", "race_id", record.ID, "error", err)
			outcome.Warnings = append(outcome.Warnings, WarnKeyDropFailed)
		}
		outcome.Drop = drop
	}

	metrics.RaceMarginPercent.WithLabelValues(string(record.Kind)).Observe(record.Result.MarginPercent)

	if s.bus != nil {
		if err := s.bus.Publish(ctx, event.NewRaceCompletedEvent(record)); err != nil {
			log.Warn("Failed to publish race completed event", "race_id", record.ID, "error", err)
			outcome.Warnings = append(outcome.Warnings, WarnEventNotPublished)
		}
	}

	outcome.Warnings = lo.Uniq(outcome.Warnings)
	return nil
}

var errPayoutDeferred = errors.New(ErrMsgPayoutDeferred)

// settleWithRetry credits the payout, retrying store failures with backoff.
// An already claimed payout counts as done. Rejections that a retry cannot
// change are returned as is; exhausted retries return errPayoutDeferred.
func (s *service) settleWithRetry(ctx context.Context, record *domain.Race) ([]domain.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 1; attempt <= SettleMaxAttempts; attempt++ {
		payouts, err := s.settlement.Settle(ctx, record)
		var settled *domain.AlreadySettledError
		switch {
		case err == nil:
			return payouts, nil
		case errors.As(err, &settled):
			return []domain.LedgerEntry{}, nil
		case errors.Is(err, domain.ErrInvalidRaceTransition), errors.Is(err, domain.ErrInvalidInput):
			return nil, err
		}

		lastErr = err
		if attempt == SettleMaxAttempts {
			break
		}
		delay := event.CalculateRetryDelay(s.settleRetryDelay, attempt)
		log.Warn(LogMsgSettleRetry, "race_id", record.ID, "attempt", attempt, "retry_in", delay, "error", err)
		time.Sleep(delay)
	}

	metrics.SettlementRejected.WithLabelValues(ErrMsgPayoutDeferred).Inc()
	log.Error(LogMsgPayoutDeferred, "race_id", record.ID, "attempts", SettleMaxAttempts, "error", lastErr)
	return nil, errPayoutDeferred
}

func (s *service) save(ctx context.Context, outcome *RaceOutcome) {
	record := outcome.Race
	if err := s.races.UpdateRace(ctx, record); err != nil {
		logger.FromContext(ctx).Warn("Failed to update race record",
			"race_id", record.ID,
			"status", record.Status,
			"error", err)
		outcome.Warnings = append(outcome.Warnings, WarnRaceRecordNotSaved)
	}
}

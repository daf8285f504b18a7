// Package settlement applies race outcomes to account balances.
//
// Bets are debited before a race is scored and payouts are credited once it is
// resolved. Every mutation is written as a balance change plus a transaction row
// plus an activity row inside one store transaction. Each phase is claimed once
// per race, so a replayed settlement is rejected instead of paying twice.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"

	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/logger"
	"github.com/osse101/RaceBot_Go/internal/metrics"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

// Payout rules
const (
	PvPWinMultiplier = 2
)

var (
	// SoloWinMultiplier is the gross payout on a solo win, stake included
	SoloWinMultiplier = decimal.RequireFromString("1.8")
	// SoloRefundFraction is returned to the player on a solo loss
	SoloRefundFraction = decimal.RequireFromString("0.2")
)

// Config bounds the stakes accepted by the service
type Config struct {
	MinBet    int64
	MaxBet    int64
	CacheSize int
}

// Service settles race stakes and payouts
type Service interface {
	// ValidateBet checks the amount and that the account can cover it. It writes nothing.
	ValidateBet(ctx context.Context, accountID string, bet int64) error
	// PlaceBets debits the stake from every staking participant of the race
	PlaceBets(ctx context.Context, race *domain.Race) ([]domain.LedgerEntry, error)
	// Settle credits the payout for a resolved race
	Settle(ctx context.Context, race *domain.Race) ([]domain.LedgerEntry, error)
	// GetBalance returns the current balance of an account
	GetBalance(ctx context.Context, accountID string) (int64, error)
}

type service struct {
	repo    repository.Ledger
	cfg     Config
	settled *lru.Cache[uuid.UUID, struct{}]
}

// NewService creates a settlement service
func NewService(repo repository.Ledger, cfg Config) (Service, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = DefaultSettledCacheSize
	}
	if cfg.MinBet <= 0 {
		cfg.MinBet = 1
	}
	cache, err := lru.New[uuid.UUID, struct{}](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create settled race cache: %w", err)
	}
	return &service{
		repo:    repo,
		cfg:     cfg,
		settled: cache,
	}, nil
}

func (s *service) GetBalance(ctx context.Context, accountID string) (int64, error) {
	return s.repo.GetBalance(ctx, accountID)
}

func (s *service) checkAmount(bet int64) error {
	if bet < s.cfg.MinBet {
		return fmt.Errorf("%w: minimum bet is %d", domain.ErrInvalidBet, s.cfg.MinBet)
	}
	if s.cfg.MaxBet > 0 && bet > s.cfg.MaxBet {
		return fmt.Errorf("%w: maximum bet is %d", domain.ErrInvalidBet, s.cfg.MaxBet)
	}
	return nil
}

func (s *service) ValidateBet(ctx context.Context, accountID string, bet int64) error {
	if err := s.checkAmount(bet); err != nil {
		return err
	}
	balance, err := s.repo.GetBalance(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to get balance: %w", err)
	}
	if balance < bet {
		return &domain.InsufficientBalanceError{AccountID: accountID, Balance: balance, Required: bet}
	}
	return nil
}

func (s *service) PlaceBets(ctx context.Context, race *domain.Race) ([]domain.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	entries, err := BetEntries(race)
	if err != nil {
		return nil, err
	}
	if err := s.checkAmount(race.Bet); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	claimed, err := tx.ClaimRacePhase(ctx, race.ID, repository.PhaseBets)
	if err != nil {
		return nil, fmt.Errorf("failed to claim bet phase: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: bets already placed for race %s", domain.ErrInvalidRaceTransition, race.ID)
	}

	// Every staker is checked before any balance moves
	for _, e := range entries {
		balance, err := tx.GetBalanceForUpdate(ctx, e.AccountID)
		if err != nil {
			return nil, fmt.Errorf("failed to lock balance: %w", err)
		}
		if balance < -e.Amount {
			metrics.SettlementRejected.WithLabelValues(domain.ErrMsgInsufficientFunds).Inc()
			return nil, &domain.InsufficientBalanceError{AccountID: e.AccountID, Balance: balance, Required: -e.Amount}
		}
	}

	if err := s.apply(ctx, tx, race, entries); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	for _, e := range entries {
		metrics.LedgerEntries.WithLabelValues(string(e.Kind)).Inc()
		metrics.CurrencyWagered.Add(float64(-e.Amount))
	}
	log.Info("Race bets placed", "race_id", race.ID, "kind", race.Kind, "bet", race.Bet, "stakers", len(entries))
	return entries, nil
}

func (s *service) Settle(ctx context.Context, race *domain.Race) ([]domain.LedgerEntry, error) {
	log := logger.FromContext(ctx)

	if race.Result == nil {
		return nil, fmt.Errorf("%w: race %s has no result", domain.ErrInvalidRaceTransition, race.ID)
	}
	if s.settled.Contains(race.ID) {
		metrics.SettlementRejected.WithLabelValues(domain.ErrMsgAlreadySettled).Inc()
		return nil, &domain.AlreadySettledError{RaceID: race.ID}
	}

	entries, err := PayoutEntries(race)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	claimed, err := tx.ClaimRacePhase(ctx, race.ID, repository.PhasePayout)
	if err != nil {
		return nil, fmt.Errorf("failed to claim payout phase: %w", err)
	}
	if !claimed {
		s.settled.Add(race.ID, struct{}{})
		metrics.SettlementRejected.WithLabelValues(domain.ErrMsgAlreadySettled).Inc()
		return nil, &domain.AlreadySettledError{RaceID: race.ID}
	}

	if err := s.apply(ctx, tx, race, entries); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.settled.Add(race.ID, struct{}{})

	for _, e := range entries {
		metrics.LedgerEntries.WithLabelValues(string(e.Kind)).Inc()
		metrics.CurrencyPaidOut.Add(float64(e.Amount))
	}
	log.Info("Race settled", "race_id", race.ID, "kind", race.Kind, "winner", race.Result.Winner, "entries", len(entries))
	return entries, nil
}

// apply writes the balance change and both audit rows for each entry
func (s *service) apply(ctx context.Context, tx repository.LedgerTx, race *domain.Race, entries []domain.LedgerEntry) error {
	for _, e := range entries {
		if _, err := tx.AdjustBalance(ctx, e.AccountID, e.Amount); err != nil {
			if errors.Is(err, domain.ErrInsufficientFunds) {
				return err
			}
			return fmt.Errorf("failed to adjust balance for %s: %w", e.AccountID, err)
		}
		if err := tx.RecordTransaction(ctx, domain.TransactionFromEntry(e)); err != nil {
			return fmt.Errorf("failed to record transaction: %w", err)
		}
		if err := tx.RecordActivity(ctx, domain.ActivityFromEntry(e, race.Track)); err != nil {
			return fmt.Errorf("failed to record activity: %w", err)
		}
	}
	return nil
}

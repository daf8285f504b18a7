package racing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RaceBot_Go/internal/challenge"
	"github.com/osse101/RaceBot_Go/internal/concurrency"
	"github.com/osse101/RaceBot_Go/internal/database/memory"
	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/event"
	"github.com/osse101/RaceBot_Go/internal/race"
	"github.com/osse101/RaceBot_Go/internal/repository"
	"github.com/osse101/RaceBot_Go/internal/settlement"
	"github.com/osse101/RaceBot_Go/internal/weighted"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, r *domain.Race) (*domain.KeyDrop, error) {
	args := m.Called(ctx, r)
	drop, _ := args.Get(0).(*domain.KeyDrop)
	return drop, args.Error(1)
}

func fixed(v float64) weighted.Rand {
	return func() float64 { return v }
}

type harness struct {
	svc       *service
	store     *memory.Store
	registry  *challenge.Registry
	resolver  *mockResolver
	completed []event.Event
}

// newHarness wires the real settlement against the in-memory store. A 0.5
// draw makes the multiplicative jitter exactly 1, so the stronger car wins.
func newHarness(t *testing.T, opponentDraw float64) *harness {
	t.Helper()
	return newHarnessWithLedger(t, opponentDraw, nil)
}

// newHarnessWithLedger lets a test wrap the ledger the settlement service uses
func newHarnessWithLedger(t *testing.T, opponentDraw float64, wrap func(repository.Ledger) repository.Ledger) *harness {
	t.Helper()
	store := memory.NewStore()
	ledger := store.Ledger()
	if wrap != nil {
		ledger = wrap(ledger)
	}
	settle, err := settlement.NewService(ledger, settlement.Config{MinBet: 1, MaxBet: 5000, CacheSize: 32})
	require.NoError(t, err)

	h := &harness{
		store:    store,
		registry: challenge.NewRegistry(0),
		resolver: new(mockResolver),
	}
	bus := event.NewMemoryBus()
	bus.Subscribe(event.RaceCompleted, func(ctx context.Context, e event.Event) error {
		h.completed = append(h.completed, e)
		return nil
	})

	engine := race.NewEngineWithRand(fixed(0.5), fixed(0))
	svc := NewService(engine, settle, h.resolver, store.Races(), h.registry, concurrency.NewLockManager(), bus).(*service)
	svc.rnd = fixed(opponentDraw)
	svc.settleRetryDelay = time.Millisecond
	h.svc = svc
	return h
}

func (h *harness) balance(t *testing.T, id string) int64 {
	t.Helper()
	b, err := h.store.Ledger().GetBalance(context.Background(), id)
	require.NoError(t, err)
	return b
}

var (
	strongCar = domain.CarStats{Speed: 60, Acceleration: 60, Handling: 60, Boost: 60}
	weakCar   = domain.CarStats{Speed: 30, Acceleration: 30, Handling: 30, Boost: 30}
)

func TestRunSolo_Win(t *testing.T) {
	h := newHarness(t, 0) // opponent at 80% of every stat
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil).Once()

	out, err := h.svc.RunSolo(context.Background(), SoloRaceRequest{
		UserID: "alice", Track: domain.TrackCircuit, Bet: 100, Car: strongCar,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SideChallenger, out.Race.Result.Winner)
	assert.Equal(t, domain.CarStats{Speed: 48, Acceleration: 48, Handling: 48, Boost: 48}, out.Race.OpponentCar)
	assert.Equal(t, domain.RarityCommon, out.OpponentRarity)
	assert.Empty(t, out.Warnings)
	assert.Len(t, out.Race.Result.Events, race.TimedRace.MinEvents)

	require.Len(t, out.Ledger, 2)
	assert.Equal(t, int64(-100), out.Ledger[0].Amount)
	assert.Equal(t, domain.LedgerSoloRaceWin, out.Ledger[1].Kind)
	assert.Equal(t, int64(180), out.Ledger[1].Amount)
	assert.Equal(t, int64(1080), h.balance(t, "alice"))

	stored, err := h.svc.GetRace(context.Background(), out.Race.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RaceStatusSettled, stored.Status)
	assert.NotNil(t, stored.SettledAt)

	require.Len(t, h.completed, 1)
	h.resolver.AssertExpectations(t)
}

func TestRunSolo_LossRefund(t *testing.T) {
	h := newHarness(t, 0.99) // opponent near 120%
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil)

	out, err := h.svc.RunSolo(context.Background(), SoloRaceRequest{
		UserID: "alice", Track: domain.TrackDrag, Bet: 100, Car: strongCar,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SideOpponent, out.Race.Result.Winner)
	assert.Equal(t, "", out.Race.WinnerID())
	require.Len(t, out.Ledger, 2)
	assert.Equal(t, domain.LedgerSoloRaceRefund, out.Ledger[1].Kind)
	assert.Equal(t, int64(920), h.balance(t, "alice"))
}

func TestRunSolo_OpponentStatsCapped(t *testing.T) {
	h := newHarness(t, 0.99)
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil)

	out, err := h.svc.RunSolo(context.Background(), SoloRaceRequest{
		UserID: "alice", Track: domain.TrackStreet, Bet: 10,
		Car: domain.CarStats{Speed: 95, Acceleration: 90, Handling: 10, Boost: -5},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.MaxStatValue, out.Race.OpponentCar.Speed)
	assert.Equal(t, domain.MaxStatValue, out.Race.OpponentCar.Acceleration)
	assert.Equal(t, 11, out.Race.OpponentCar.Handling)
	assert.Equal(t, 0, out.Race.ChallengerCar.Boost)
}

func TestRunSolo_Rejections(t *testing.T) {
	tests := []struct {
		name string
		req  SoloRaceRequest
		want error
	}{
		{"unknown track", SoloRaceRequest{UserID: "alice", Track: "moon", Bet: 10}, domain.ErrUnknownTrackType},
		{"zero bet", SoloRaceRequest{UserID: "alice", Track: domain.TrackDrift, Bet: 0}, domain.ErrInvalidBet},
		{"over max", SoloRaceRequest{UserID: "alice", Track: domain.TrackDrift, Bet: 6000}, domain.ErrInvalidBet},
		{"over balance", SoloRaceRequest{UserID: "alice", Track: domain.TrackDrift, Bet: 1500}, domain.ErrInsufficientFunds},
		{"missing user", SoloRaceRequest{Track: domain.TrackDrift, Bet: 10}, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 0)
			_, err := h.svc.RunSolo(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.want)

			assert.Equal(t, domain.DefaultStartingBalance, h.balance(t, "alice"))
			assert.Empty(t, h.store.Transactions())
			assert.Empty(t, h.completed)
			h.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
		})
	}
}

func TestRunSolo_DropFailureIsWarning(t *testing.T) {
	h := newHarness(t, 0)
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, errors.New("keys offline"))

	out, err := h.svc.RunSolo(context.Background(), SoloRaceRequest{
		UserID: "alice", Track: domain.TrackOffroad, Bet: 50, Car: strongCar,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{WarnKeyDropFailed}, out.Warnings)
	assert.Nil(t, out.Drop)
	assert.Equal(t, int64(1040), h.balance(t, "alice"))
}

func TestRunSolo_CancelledAfterBetsStillSettles(t *testing.T) {
	h := newHarness(t, 0)
	ctx, cancel := context.WithCancel(context.Background())

	h.resolver.On("Resolve", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			cancel()
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(&domain.KeyDrop{UserID: "alice", Tier: domain.KeyStandard}, nil)

	out, err := h.svc.RunSolo(ctx, SoloRaceRequest{
		UserID: "alice", Track: domain.TrackStreet, Bet: 100, Car: strongCar,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.KeyStandard, out.Drop.Tier)
	assert.Equal(t, domain.RaceStatusSettled, out.Race.Status)
}

func TestChallengeAccept(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil).Once()

	c, err := h.svc.Challenge(ctx, ChallengeRequest{
		ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackCircuit, Bet: 100, Car: strongCar,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, 1, h.registry.Len())
	// Nothing moves until the challenge is accepted
	assert.Empty(t, h.store.Transactions())

	out, err := h.svc.Accept(ctx, c.ID, "bob", weakCar)
	require.NoError(t, err)

	assert.Equal(t, domain.RaceKindPvP, out.Race.Kind)
	assert.Equal(t, "alice", out.Race.WinnerID())
	require.Len(t, out.Ledger, 3)
	assert.Equal(t, domain.LedgerRaceWin, out.Ledger[2].Kind)
	assert.Equal(t, int64(200), out.Ledger[2].Amount)
	assert.Equal(t, int64(1100), h.balance(t, "alice"))
	assert.Equal(t, int64(900), h.balance(t, "bob"))
	assert.Equal(t, 0, h.registry.Len())
	require.Len(t, h.completed, 1)

	_, err = h.svc.Accept(ctx, c.ID, "bob", weakCar)
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestChallenge_Rejections(t *testing.T) {
	ctx := context.Background()

	h := newHarness(t, 0)
	_, err := h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "alice", Track: domain.TrackDrag, Bet: 10})
	assert.ErrorIs(t, err, domain.ErrSelfChallenge)

	h.store.SetBalance("bob", 5)
	_, err = h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 10})
	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "bob", insufficient.AccountID)

	_, err = h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "carol", Track: domain.TrackDrag, Bet: 10})
	require.NoError(t, err)
	_, err = h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "carol", OpponentID: "alice", Track: domain.TrackDrift, Bet: 20})
	assert.ErrorIs(t, err, domain.ErrChallengeConflict)
	assert.Equal(t, 1, h.registry.Len())
}

func TestAccept_WrongAccount(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	c, err := h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 10})
	require.NoError(t, err)

	_, err = h.svc.Accept(ctx, c.ID, "mallory", weakCar)
	assert.ErrorIs(t, err, domain.ErrNotChallengeTarget)
	_, err = h.svc.Accept(ctx, c.ID, "alice", weakCar)
	assert.ErrorIs(t, err, domain.ErrNotChallengeTarget)
	assert.Equal(t, 1, h.registry.Len(), "challenge stays pending")
}

func TestAccept_BalanceDroppedSinceChallenge(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	c, err := h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 500})
	require.NoError(t, err)
	h.store.SetBalance("alice", 100)

	_, err = h.svc.Accept(ctx, c.ID, "bob", weakCar)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.Equal(t, int64(100), h.balance(t, "alice"))
	assert.Equal(t, domain.DefaultStartingBalance, h.balance(t, "bob"))
	assert.Empty(t, h.store.Transactions())
}

func TestAccept_ConcurrentOnlyOneRuns(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil)

	c, err := h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 100})
	require.NoError(t, err)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := h.svc.Accept(ctx, c.ID, "bob", weakCar); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Len(t, h.store.Transactions(), 3)
	assert.Equal(t, 2*domain.DefaultStartingBalance, h.balance(t, "alice")+h.balance(t, "bob"))
}

func TestDecline(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()

	c, err := h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 10})
	require.NoError(t, err)

	assert.ErrorIs(t, h.svc.Decline(ctx, c.ID, "mallory"), domain.ErrNotChallengeTarget)
	require.NoError(t, h.svc.Decline(ctx, c.ID, "bob"))
	assert.Equal(t, 0, h.registry.Len())
	require.NoError(t, h.svc.Decline(ctx, c.ID, "bob"), "declining twice is a no-op")

	c, err = h.svc.Challenge(ctx, ChallengeRequest{ChallengerID: "alice", OpponentID: "bob", Track: domain.TrackDrag, Bet: 10})
	require.NoError(t, err)
	require.NoError(t, h.svc.Decline(ctx, c.ID, "alice"), "challenger may withdraw")
	assert.Equal(t, 0, h.registry.Len())
}

func TestShowdown(t *testing.T) {
	h := newHarness(t, 0)

	out, err := h.svc.Showdown(context.Background(), ShowdownRequest{
		ChallengerID:  "alice",
		Track:         domain.TrackDrift,
		ChallengerCar: weakCar,
		OpponentCar:   strongCar,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.RaceKindShowdown, out.Race.Kind)
	assert.Equal(t, domain.ModeScore, out.Race.Result.Mode)
	assert.Equal(t, domain.SideOpponent, out.Race.Result.Winner)
	assert.Len(t, out.Race.Result.Events, race.ShowdownRace.MinEvents)
	assert.NotEmpty(t, out.Race.Result.Margin)
	assert.Equal(t, domain.RaceStatusSettled, out.Race.Status)

	assert.Empty(t, out.Ledger)
	assert.Empty(t, h.store.Transactions())
	assert.Equal(t, domain.DefaultStartingBalance, h.balance(t, "alice"))
	h.resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything)
	require.Len(t, h.completed, 1)
}

func TestShowdown_UnknownTrack(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.svc.Showdown(context.Background(), ShowdownRequest{ChallengerID: "alice", Track: "ice"})
	assert.ErrorIs(t, err, domain.ErrUnknownTrackType)
}

func TestGetRace_NotFound(t *testing.T) {
	h := newHarness(t, 0)
	_, err := h.svc.GetRace(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrRaceNotFound)
}

func TestGetRecentRaces(t *testing.T) {
	h := newHarness(t, 0)
	ctx := context.Background()
	h.resolver.On("Resolve", mock.Anything, mock.Anything).Return(nil, nil)

	for i := 0; i < 3; i++ {
		_, err := h.svc.RunSolo(ctx, SoloRaceRequest{UserID: "alice", Track: domain.TrackStreet, Bet: 10, Car: strongCar})
		require.NoError(t, err)
	}
	races, err := h.svc.GetRecentRaces(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Len(t, races, 2)

	races, err = h.svc.GetRecentRaces(ctx, "bob", 0)
	require.NoError(t, err)
	assert.Empty(t, races)
}

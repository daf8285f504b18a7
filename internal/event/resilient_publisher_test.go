package event

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// subscriber stands in for a downstream consumer such as the activity feed.
// failures reports whether the n-th delivery (1-based) of a key should fail.
type subscriber struct {
	mu         sync.Mutex
	deliveries map[string][]time.Time
	accepted   []string
	failures   func(key string, n int) bool
	err        error
}

func newSubscriber(err error, failures func(key string, n int) bool) *subscriber {
	return &subscriber{deliveries: map[string][]time.Time{}, failures: failures, err: err}
}

func (s *subscriber) handle(key func(Event) string) Handler {
	return func(ctx context.Context, e Event) error {
		k := key(e)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.deliveries[k] = append(s.deliveries[k], time.Now())
		if s.failures != nil && s.failures(k, len(s.deliveries[k])) {
			return s.err
		}
		s.accepted = append(s.accepted, k)
		return nil
	}
}

func (s *subscriber) attempts(key string) []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Time(nil), s.deliveries[key]...)
}

func (s *subscriber) acceptedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.accepted...)
}

func raceKey(e Event) string {
	p, err := DecodePayload[RaceCompletedPayloadV1](e.Payload)
	if err != nil {
		return ""
	}
	return p.RaceID
}

func challengeKey(e Event) string {
	p, err := DecodePayload[ChallengeExpiredPayloadV1](e.Payload)
	if err != nil {
		return ""
	}
	return p.ChallengeID
}

func dropKey(e Event) string {
	p, err := DecodePayload[KeyDroppedPayloadV1](e.Payload)
	if err != nil {
		return ""
	}
	return p.UserID
}

func settledRace(t *testing.T, challenger string) *domain.Race {
	t.Helper()
	race := domain.NewRace(domain.RaceKindSolo, domain.TrackCircuit, challenger, "", 100)
	require.NoError(t, race.Advance(domain.RaceStatusScored))
	race.Result = &domain.RaceResult{Track: domain.TrackCircuit, Winner: domain.SideChallenger, Margin: domain.MarginComfortably}
	require.NoError(t, race.Advance(domain.RaceStatusResolved))
	require.NoError(t, race.Advance(domain.RaceStatusSettled))
	return race
}

func readDeadLetters(t *testing.T, path string) []DeadLetterEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entries []DeadLetterEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry DeadLetterEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entries = append(entries, entry)
	}
	require.NoError(t, scanner.Err())
	return entries
}

func deadLetterPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "deadletter.jsonl")
}

func TestResilientPublisher_DeliversRaceCompleted(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	feed := newSubscriber(nil, nil)
	bus.Subscribe(RaceCompleted, feed.handle(raceKey))

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)

	race := settledRace(t, "alice")
	require.NoError(t, rp.Publish(context.Background(), NewRaceCompletedEvent(race)))
	require.NoError(t, rp.Shutdown(context.Background()))

	assert.Equal(t, []string{race.ID.String()}, feed.acceptedKeys())
	assert.Len(t, feed.attempts(race.ID.String()), 1)
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_RetriesUntilSubscriberRecovers(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	feed := newSubscriber(errors.New("activity store unavailable"), func(_ string, n int) bool { return n == 1 })
	bus.Subscribe(RaceCompleted, feed.handle(raceKey))

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	race := settledRace(t, "alice")
	// The failure is absorbed; the caller's race pipeline never sees it
	require.NoError(t, rp.Publish(context.Background(), NewRaceCompletedEvent(race)))

	require.Eventually(t, func() bool { return len(feed.acceptedKeys()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Len(t, feed.attempts(race.ID.String()), 2)
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_DeadLettersExpiredChallenge(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	feed := newSubscriber(errors.New("activity store unavailable"), func(string, int) bool { return true })
	bus.Subscribe(ChallengeExpired, feed.handle(challengeKey))

	rp, err := NewResilientPublisher(bus, 2, 10*time.Millisecond, path)
	require.NoError(t, err)

	rp.PublishWithRetry(context.Background(), NewChallengeExpiredEvent("c-456", "alice", "bob", domain.TrackStreet, 50))

	// One synchronous delivery plus two retries
	require.Eventually(t, func() bool { return len(feed.attempts("c-456")) == 3 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, rp.Shutdown(context.Background()))

	entries := readDeadLetters(t, path)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, DeadLetterSchemaVersion, entry.SchemaVersion)
	assert.Equal(t, ChallengeExpired, entry.Event.Type)
	assert.Equal(t, 3, entry.Attempts)
	assert.Contains(t, entry.LastError, "activity store unavailable")

	payload, err := DecodePayload[ChallengeExpiredPayloadV1](entry.Event.Payload)
	require.NoError(t, err)
	assert.Equal(t, "c-456", payload.ChallengeID)
	assert.Equal(t, "alice", payload.ChallengerID)
	assert.Equal(t, "bob", payload.OpponentID)
	assert.Equal(t, domain.TrackStreet, payload.Track)
	assert.Equal(t, int64(50), payload.Bet)
	assert.Empty(t, feed.acceptedKeys())
}

func TestResilientPublisher_QueueOverflowDeadLettersEveryRace(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	feed := newSubscriber(errors.New("leaderboard store unavailable"), func(string, int) bool { return true })
	bus.Subscribe(RaceCompleted, feed.handle(raceKey))

	dl, err := NewDeadLetterWriter(path)
	require.NoError(t, err)
	rp := &ResilientPublisher{
		bus:        bus,
		retryQueue: make(chan retryEntry, 2),
		maxRetries: 5,
		retryDelay: time.Hour,
		deadLetter: dl,
		shutdown:   make(chan struct{}),
	}

	races := make([]*domain.Race, 6)
	for i := range races {
		races[i] = settledRace(t, "racer")
		rp.PublishWithRetry(context.Background(), NewRaceCompletedEvent(races[i]))
	}

	// The queue holds the first two; the rest overflow straight to the dead letter
	overflow := readDeadLetters(t, path)
	require.Len(t, overflow, 4)
	for i, entry := range overflow {
		payload, err := DecodePayload[RaceCompletedPayloadV1](entry.Event.Payload)
		require.NoError(t, err)
		assert.Equal(t, races[i+2].ID.String(), payload.RaceID)
		assert.Equal(t, 1, entry.Attempts)
	}

	// Shutdown makes one last attempt at the queued races before dead-lettering them
	rp.wg.Add(1)
	go rp.retryWorker()
	require.NoError(t, rp.Shutdown(context.Background()))

	all := readDeadLetters(t, path)
	require.Len(t, all, 6)
	seen := map[string]int{}
	for _, entry := range all {
		payload, err := DecodePayload[RaceCompletedPayloadV1](entry.Event.Payload)
		require.NoError(t, err)
		assert.Equal(t, domain.RaceKindSolo, payload.Kind)
		assert.Equal(t, "racer", payload.WinnerID)
		seen[payload.RaceID]++
	}
	for _, race := range races {
		assert.Equal(t, 1, seen[race.ID.String()], "race %s dead-lettered once", race.ID)
	}
	for _, race := range races[:2] {
		assert.Len(t, feed.attempts(race.ID.String()), 2)
	}
}

func TestResilientPublisher_ShutdownDeliversQueuedDrops(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	inventory := newSubscriber(errors.New("inventory locked"), func(_ string, n int) bool { return n == 1 })
	bus.Subscribe(KeyDropped, inventory.handle(dropKey))

	// The retry delay is far longer than the test so only shutdown can deliver
	rp, err := NewResilientPublisher(bus, 5, time.Hour, path)
	require.NoError(t, err)

	winners := []string{"alice", "bob", "carol"}
	for _, user := range winners {
		rp.PublishWithRetry(context.Background(), NewKeyDroppedEvent(domain.KeyDrop{
			UserID: user, Tier: domain.KeyStandard, Source: domain.DropSourceRaceWin, Track: domain.TrackDrag,
		}))
	}
	assert.Empty(t, inventory.acceptedKeys())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, rp.Shutdown(ctx))

	assert.ElementsMatch(t, winners, inventory.acceptedKeys())
	assert.Empty(t, readDeadLetters(t, path))
}

func TestResilientPublisher_BackoffDoubles(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	feed := newSubscriber(errors.New("activity store unavailable"), func(_ string, n int) bool { return n < 4 })
	bus.Subscribe(RaceCompleted, feed.handle(raceKey))

	base := 40 * time.Millisecond
	rp, err := NewResilientPublisher(bus, 5, base, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	race := settledRace(t, "alice")
	rp.PublishWithRetry(context.Background(), NewRaceCompletedEvent(race))

	require.Eventually(t, func() bool { return len(feed.acceptedKeys()) == 1 }, 3*time.Second, 5*time.Millisecond)

	attempts := feed.attempts(race.ID.String())
	require.Len(t, attempts, 4)
	assert.GreaterOrEqual(t, attempts[1].Sub(attempts[0]), base)
	assert.GreaterOrEqual(t, attempts[2].Sub(attempts[1]), 2*base)
	assert.GreaterOrEqual(t, attempts[3].Sub(attempts[2]), 4*base)
}

func TestResilientPublisher_ConcurrentRaces(t *testing.T) {
	path := deadLetterPath(t)
	bus := NewMemoryBus()
	feed := newSubscriber(nil, nil)
	bus.Subscribe(RaceCompleted, feed.handle(raceKey))

	rp, err := NewResilientPublisher(bus, 3, 10*time.Millisecond, path)
	require.NoError(t, err)
	defer rp.Shutdown(context.Background())

	const racers = 10
	const racesEach = 5

	var mu sync.Mutex
	var want []string
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < racesEach; j++ {
				race := domain.NewRace(domain.RaceKindSolo, domain.TrackOffroad, "racer", "", 10)
				mu.Lock()
				want = append(want, race.ID.String())
				mu.Unlock()
				rp.PublishWithRetry(context.Background(), NewRaceCompletedEvent(race))
			}
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, want, feed.acceptedKeys())
}

// Package memory is an in-process implementation of the repositories, used
// when the service runs without PostgreSQL and by orchestration tests.
//
// A transaction holds the store lock from BeginTx until Commit or Rollback,
// so transactions are fully serialized. Rollback replays an undo log.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/osse101/RaceBot_Go/internal/activitylog"
	"github.com/osse101/RaceBot_Go/internal/domain"
	"github.com/osse101/RaceBot_Go/internal/repository"
)

var errTxClosed = errors.New(domain.ErrMsgTxClosed)

type phaseKey struct {
	raceID uuid.UUID
	phase  string
}

type stackKey struct {
	userID string
	tier   domain.KeyTier
}

// Store holds every table in memory
type Store struct {
	mu           sync.Mutex
	accounts     map[string]int64
	transactions []domain.Transaction
	activity     []domain.ActivityLog
	phases       map[phaseKey]struct{}
	keys         map[int64]*domain.KeyInventoryEntry
	stacks       map[stackKey]int64
	nextID       int64

	racesMu sync.RWMutex
	races   map[uuid.UUID]domain.Race

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]int64),
		phases:   make(map[phaseKey]struct{}),
		keys:     make(map[int64]*domain.KeyInventoryEntry),
		stacks:   make(map[stackKey]int64),
		races:    make(map[uuid.UUID]domain.Race),
		now:      time.Now,
	}
}

// Ledger returns the store as a repository.Ledger
func (s *Store) Ledger() repository.Ledger { return ledgerRepo{s} }

// Keys returns the store as a repository.Keys
func (s *Store) Keys() repository.Keys { return keysRepo{s} }

// Races returns the store as a repository.Races
func (s *Store) Races() repository.Races { return racesRepo{s} }

// Activity returns the store as an activitylog.Repository
func (s *Store) Activity() activitylog.Repository { return activityRepo{s} }

// Transactions returns a copy of every audit row, oldest first
func (s *Store) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

// ActivityFor returns a copy of the feed rows of a user, oldest first
func (s *Store) ActivityFor(userID string) []domain.ActivityLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Filter(s.activity, func(a domain.ActivityLog, _ int) bool { return a.UserID == userID })
}

// SetBalance seeds an account balance
func (s *Store) SetBalance(accountID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[accountID] = balance
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) appendActivity(entry domain.ActivityLog) {
	entry.ID = s.id()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	s.activity = append(s.activity, entry)
}

// tx is the shared transaction state; it owns s.mu until closed
type tx struct {
	s      *Store
	undo   []func()
	closed bool
}

func (s *Store) begin() *tx {
	s.mu.Lock()
	return &tx{s: s}
}

func (t *tx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *tx) Commit(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.closed {
		return errTxClosed
	}
	t.closed = true
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
	t.s.mu.Unlock()
	return nil
}

func (t *tx) ensureAccount(accountID string) int64 {
	balance, ok := t.s.accounts[accountID]
	if !ok {
		balance = domain.DefaultStartingBalance
		t.s.accounts[accountID] = balance
		t.onRollback(func() { delete(t.s.accounts, accountID) })
	}
	return balance
}

func (t *tx) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	n := len(t.s.activity)
	t.s.appendActivity(entry)
	t.onRollback(func() { t.s.activity = t.s.activity[:n] })
	return nil
}

// --- Ledger ---

type ledgerRepo struct{ s *Store }

func (r ledgerRepo) GetBalance(ctx context.Context, accountID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if balance, ok := r.s.accounts[accountID]; ok {
		return balance, nil
	}
	return domain.DefaultStartingBalance, nil
}

func (r ledgerRepo) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	return &ledgerTx{tx: r.s.begin()}, nil
}

type ledgerTx struct{ *tx }

func (t *ledgerTx) GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	return t.ensureAccount(accountID), nil
}

func (t *ledgerTx) AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	old := t.ensureAccount(accountID)
	if old+delta < 0 {
		return 0, domain.ErrInsufficientFunds
	}
	t.s.accounts[accountID] = old + delta
	t.onRollback(func() { t.s.accounts[accountID] = old })
	return old + delta, nil
}

func (t *ledgerTx) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	n := len(t.s.transactions)
	txn.ID = t.s.id()
	txn.CreatedAt = t.s.now()
	t.s.transactions = append(t.s.transactions, txn)
	t.onRollback(func() { t.s.transactions = t.s.transactions[:n] })
	return nil
}

func (t *ledgerTx) ClaimRacePhase(ctx context.Context, raceID uuid.UUID, phase string) (bool, error) {
	key := phaseKey{raceID: raceID, phase: phase}
	if _, ok := t.s.phases[key]; ok {
		return false, nil
	}
	t.s.phases[key] = struct{}{}
	t.onRollback(func() { delete(t.s.phases, key) })
	return true, nil
}

// --- Keys ---

type keysRepo struct{ s *Store }

func (r keysRepo) GetKeys(ctx context.Context, userID string) ([]domain.KeyInventoryEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var entries []domain.KeyInventoryEntry
	for key, id := range r.s.stacks {
		if key.userID == userID && r.s.keys[id].Quantity > 0 {
			entries = append(entries, *r.s.keys[id])
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Tier < entries[j].Tier })
	return entries, nil
}

func (r keysRepo) BeginTx(ctx context.Context) (repository.KeysTx, error) {
	return &keysTx{tx: r.s.begin()}, nil
}

func (r keysRepo) BeginPurchaseTx(ctx context.Context) (repository.PurchaseTx, error) {
	t := r.s.begin()
	return &purchaseTx{keysTx: keysTx{t}, ledger: ledgerTx{t}}, nil
}

type keysTx struct{ *tx }

func (t *keysTx) GetOrCreateKeyEntry(ctx context.Context, userID string, tier domain.KeyTier) (*domain.KeyInventoryEntry, error) {
	key := stackKey{userID: userID, tier: tier}
	if id, ok := t.s.stacks[key]; ok {
		entry := *t.s.keys[id]
		return &entry, nil
	}

	entry := &domain.KeyInventoryEntry{ID: t.s.id(), UserID: userID, Tier: tier, UpdatedAt: t.s.now()}
	t.s.keys[entry.ID] = entry
	t.s.stacks[key] = entry.ID
	t.onRollback(func() {
		delete(t.s.keys, entry.ID)
		delete(t.s.stacks, key)
	})
	copied := *entry
	return &copied, nil
}

func (t *keysTx) IncrementKeyEntry(ctx context.Context, id int64, amount int) (*domain.KeyInventoryEntry, error) {
	entry, ok := t.s.keys[id]
	if !ok || amount <= 0 {
		return nil, domain.ErrInvalidInput
	}
	t.setQuantity(entry, entry.Quantity+amount)
	copied := *entry
	return &copied, nil
}

func (t *keysTx) ConsumeKey(ctx context.Context, userID string, tier domain.KeyTier) (bool, error) {
	id, ok := t.s.stacks[stackKey{userID: userID, tier: tier}]
	if !ok || t.s.keys[id].Quantity <= 0 {
		return false, nil
	}
	entry := t.s.keys[id]
	t.setQuantity(entry, entry.Quantity-1)
	return true, nil
}

func (t *keysTx) setQuantity(entry *domain.KeyInventoryEntry, quantity int) {
	old, oldUpdated := entry.Quantity, entry.UpdatedAt
	entry.Quantity = quantity
	entry.UpdatedAt = t.s.now()
	t.onRollback(func() {
		entry.Quantity = old
		entry.UpdatedAt = oldUpdated
	})
}

// purchaseTx shares one undo log between the key and ledger halves
type purchaseTx struct {
	keysTx
	ledger ledgerTx
}

func (t *purchaseTx) GetBalanceForUpdate(ctx context.Context, accountID string) (int64, error) {
	return t.ledger.GetBalanceForUpdate(ctx, accountID)
}

func (t *purchaseTx) AdjustBalance(ctx context.Context, accountID string, delta int64) (int64, error) {
	return t.ledger.AdjustBalance(ctx, accountID, delta)
}

func (t *purchaseTx) RecordTransaction(ctx context.Context, txn domain.Transaction) error {
	return t.ledger.RecordTransaction(ctx, txn)
}

// --- Races ---

type racesRepo struct{ s *Store }

func (r racesRepo) CreateRace(ctx context.Context, race *domain.Race) error {
	r.s.racesMu.Lock()
	defer r.s.racesMu.Unlock()
	if _, ok := r.s.races[race.ID]; ok {
		return domain.ErrInvalidInput
	}
	r.s.races[race.ID] = cloneRace(race)
	return nil
}

func (r racesRepo) UpdateRace(ctx context.Context, race *domain.Race) error {
	r.s.racesMu.Lock()
	defer r.s.racesMu.Unlock()
	if _, ok := r.s.races[race.ID]; !ok {
		return domain.ErrRaceNotFound
	}
	r.s.races[race.ID] = cloneRace(race)
	return nil
}

func (r racesRepo) GetRace(ctx context.Context, id uuid.UUID) (*domain.Race, error) {
	r.s.racesMu.RLock()
	defer r.s.racesMu.RUnlock()
	race, ok := r.s.races[id]
	if !ok {
		return nil, domain.ErrRaceNotFound
	}
	copied := cloneRace(&race)
	return &copied, nil
}

func (r racesRepo) GetRecentRaces(ctx context.Context, userID string, limit int) ([]domain.Race, error) {
	r.s.racesMu.RLock()
	defer r.s.racesMu.RUnlock()

	races := lo.Filter(lo.Values(r.s.races), func(race domain.Race, _ int) bool {
		return race.ChallengerID == userID || race.OpponentID == userID
	})
	sort.Slice(races, func(i, j int) bool { return races[i].CreatedAt.After(races[j].CreatedAt) })
	if limit > 0 && len(races) > limit {
		races = races[:limit]
	}
	return races, nil
}

func (r racesRepo) ListUnsettledRaces(ctx context.Context, cutoff time.Time, limit int) ([]domain.Race, error) {
	r.s.racesMu.RLock()
	candidates := lo.Filter(lo.Values(r.s.races), func(race domain.Race, _ int) bool {
		return race.Kind != domain.RaceKindShowdown &&
			race.Status == domain.RaceStatusResolved &&
			race.Result != nil &&
			race.CreatedAt.Before(cutoff)
	})
	candidates = lo.Map(candidates, func(race domain.Race, _ int) domain.Race { return cloneRace(&race) })
	r.s.racesMu.RUnlock()

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	races := lo.Filter(candidates, func(race domain.Race, _ int) bool {
		_, betsPlaced := r.s.phases[phaseKey{raceID: race.ID, phase: repository.PhaseBets}]
		return betsPlaced
	})
	sort.Slice(races, func(i, j int) bool { return races[i].CreatedAt.Before(races[j].CreatedAt) })
	if limit > 0 && len(races) > limit {
		races = races[:limit]
	}
	return races, nil
}

// cloneRace copies the race so callers never share the stored result
func cloneRace(race *domain.Race) domain.Race {
	copied := *race
	if race.Result != nil {
		result := *race.Result
		result.Events = append([]domain.RaceEvent(nil), race.Result.Events...)
		copied.Result = &result
	}
	return copied
}

// --- Activity ---

type activityRepo struct{ s *Store }

func (r activityRepo) RecordActivity(ctx context.Context, entry domain.ActivityLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.appendActivity(entry)
	return nil
}

func (r activityRepo) ListActivity(ctx context.Context, filter activitylog.Filter) ([]domain.ActivityLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []domain.ActivityLog
	for i := len(r.s.activity) - 1; i >= 0; i-- {
		a := r.s.activity[i]
		if filter.UserID != "" && a.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && a.Type != filter.Type {
			continue
		}
		if filter.Since != nil && a.CreatedAt.Before(*filter.Since) {
			continue
		}
		out = append(out, a)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r activityRepo) CleanupOldActivity(ctx context.Context, retentionDays int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cutoff := r.s.now().AddDate(0, 0, -retentionDays)
	kept := lo.Filter(r.s.activity, func(a domain.ActivityLog, _ int) bool { return !a.CreatedAt.Before(cutoff) })
	deleted := int64(len(r.s.activity) - len(kept))
	r.s.activity = kept
	return deleted, nil
}

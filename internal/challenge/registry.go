// Package challenge holds pending PvP challenges until they are accepted,
// declined or expire.
package challenge

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/RaceBot_Go/internal/domain"
)

// DefaultTTL is how long a challenge waits for an answer
const DefaultTTL = 2 * time.Minute

// Challenge is a staked race offer from one account to another
type Challenge struct {
	ID            uuid.UUID        `json:"id"`
	ChallengerID  string           `json:"challenger_id"`
	OpponentID    string           `json:"opponent_id"`
	Track         domain.TrackType `json:"track"`
	Bet           int64            `json:"bet"`
	ChallengerCar domain.CarStats  `json:"challenger_car"`
	CreatedAt     time.Time        `json:"created_at"`
	ExpiresAt     time.Time        `json:"expires_at"`
}

// Expired reports whether the challenge can no longer be accepted at now
func (c *Challenge) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

func (c *Challenge) involves(a, b string) bool {
	return (c.ChallengerID == a && c.OpponentID == b) || (c.ChallengerID == b && c.OpponentID == a)
}

// Registry is the in-process store of pending challenges. It is safe for
// concurrent use. Expired challenges are removed lazily by Add, Get and Take,
// and in bulk by Sweep. Lazily removed challenges are held until the next
// Sweep so every expiry is reported exactly once.
type Registry struct {
	mu     sync.Mutex
	items  map[uuid.UUID]*Challenge
	lapsed []Challenge
	ttl    time.Duration
	now    func() time.Time
}

// NewRegistry creates an empty registry. A non-positive ttl uses DefaultTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		items: make(map[uuid.UUID]*Challenge),
		ttl:   ttl,
		now:   time.Now,
	}
}

// TTL returns the lifetime given to new challenges
func (r *Registry) TTL() time.Duration {
	return r.ttl
}

// Add registers a challenge, assigning its ID and expiry when unset. Only one
// live challenge may exist between the same two accounts.
func (r *Registry) Add(c *Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, existing := range r.items {
		if !existing.involves(c.ChallengerID, c.OpponentID) {
			continue
		}
		if !existing.Expired(now) {
			return domain.ErrChallengeConflict
		}
		r.expire(id, existing)
	}

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = c.CreatedAt.Add(r.ttl)
	}
	r.items[c.ID] = c
	return nil
}

// Get returns a copy of a live challenge
func (r *Registry) Get(id uuid.UUID) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookup(id)
	if err != nil {
		return Challenge{}, err
	}
	return *c, nil
}

// Take removes and returns a live challenge. An expired challenge is removed
// and reported as ErrChallengeExpired.
func (r *Registry) Take(id uuid.UUID) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.lookup(id)
	if err != nil {
		return Challenge{}, err
	}
	delete(r.items, id)
	return *c, nil
}

func (r *Registry) lookup(id uuid.UUID) (*Challenge, error) {
	c, ok := r.items[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	if c.Expired(r.now()) {
		r.expire(id, c)
		return nil, domain.ErrChallengeExpired
	}
	return c, nil
}

func (r *Registry) expire(id uuid.UUID, c *Challenge) {
	delete(r.items, id)
	r.lapsed = append(r.lapsed, *c)
}

// Remove deletes a challenge. Removing an unknown ID is a no-op.
func (r *Registry) Remove(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]
	delete(r.items, id)
	return ok
}

// Sweep removes every challenge expired at now and returns them together with
// those already removed lazily since the previous sweep
func (r *Registry) Sweep(now time.Time) []Challenge {
	r.mu.Lock()
	defer r.mu.Unlock()

	expired := r.lapsed
	r.lapsed = nil
	for id, c := range r.items {
		if c.Expired(now) {
			expired = append(expired, *c)
			delete(r.items, id)
		}
	}
	return expired
}

// Len returns the number of stored challenges, including expired ones not yet swept
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

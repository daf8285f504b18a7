package concurrency

import (
	"slices"
	"sync"
)

// LockManager hands out one mutex per key. Keys are account IDs in practice.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// LockAll acquires the locks for every distinct key in sorted order, so two
// callers locking the same pair can never deadlock. Empty keys are ignored.
// The returned func releases them in reverse order.
func (lm *LockManager) LockAll(keys ...string) (unlock func()) {
	sorted := slices.Compact(slices.Sorted(slices.Values(keys)))
	if len(sorted) > 0 && sorted[0] == "" {
		sorted = sorted[1:]
	}

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, key := range sorted {
		mu := lm.GetLock(key)
		mu.Lock()
		held = append(held, mu)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

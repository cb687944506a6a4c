package auth

import (
	"sync"
	"time"
)

const (
	// lockoutThreshold is the failed-attempt count that trips a lock.
	lockoutThreshold = 5
	// lockoutWindow is how far back failures count toward the threshold.
	lockoutWindow = 15 * time.Minute
	// lockoutDuration is how long a tripped lock holds.
	lockoutDuration = 30 * time.Minute
)

// LockoutTable tracks per-user lockout expiries. Expired locks are evaluated
// lazily rather than swept.
type LockoutTable struct {
	mu    sync.Mutex
	until map[string]time.Time
	nowFn func() time.Time
}

// NewLockoutTable constructs an empty LockoutTable. A nil nowFn defaults to
// time.Now.
func NewLockoutTable(nowFn func() time.Time) *LockoutTable {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LockoutTable{
		until: make(map[string]time.Time),
		nowFn: nowFn,
	}
}

// Remaining reports whether the user is currently locked and, if so, the
// remaining lock time rounded up to whole minutes.
func (t *LockoutTable) Remaining(userID string) (bool, int) {
	now := t.nowFn()
	t.mu.Lock()
	defer t.mu.Unlock()
	until, ok := t.until[userID]
	if !ok || !now.Before(until) {
		return false, 0
	}
	minutes := int((until.Sub(now) + time.Minute - 1) / time.Minute)
	return true, minutes
}

// Lock marks the user locked until now plus the lockout duration.
func (t *LockoutTable) Lock(userID string) {
	until := t.nowFn().Add(lockoutDuration)
	t.mu.Lock()
	t.until[userID] = until
	t.mu.Unlock()
}

// Clear removes any lock record for the user.
func (t *LockoutTable) Clear(userID string) {
	t.mu.Lock()
	delete(t.until, userID)
	t.mu.Unlock()
}

package auth

import (
	"sync"
	"time"

	"github.com/campus-id/portal-auth/internal/models"
)

// maxLedgerEntries bounds each user's attempt history; the oldest entry is
// evicted on overflow.
const maxLedgerEntries = 10

// AttemptLedger keeps a bounded, insertion-ordered login-attempt history per
// user.
type AttemptLedger struct {
	mu       sync.RWMutex
	attempts map[string][]models.LoginAttempt
	nowFn    func() time.Time
}

// NewAttemptLedger constructs an empty AttemptLedger. A nil nowFn defaults to
// time.Now.
func NewAttemptLedger(nowFn func() time.Time) *AttemptLedger {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &AttemptLedger{
		attempts: make(map[string][]models.LoginAttempt),
		nowFn:    nowFn,
	}
}

// Record appends an attempt and trims the history to the most recent
// maxLedgerEntries.
func (l *AttemptLedger) Record(userID string, attempt models.LoginAttempt) {
	l.mu.Lock()
	entries := append(l.attempts[userID], attempt)
	if len(entries) > maxLedgerEntries {
		entries = entries[len(entries)-maxLedgerEntries:]
	}
	l.attempts[userID] = entries
	l.mu.Unlock()
}

// RecentFailures counts failed attempts within the trailing window.
func (l *AttemptLedger) RecentFailures(userID string, window time.Duration) int {
	now := l.nowFn()
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, attempt := range l.attempts[userID] {
		if !attempt.Success && now.Sub(attempt.Timestamp) < window {
			count++
		}
	}
	return count
}

// History returns the user's attempts most-recent-last.
func (l *AttemptLedger) History(userID string) []models.LoginAttempt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]models.LoginAttempt(nil), l.attempts[userID]...)
}

package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/campus-id/portal-auth/internal/models"
)

const (
	// otpLifetime is how long an issued code stays valid.
	otpLifetime = 60 * time.Second
	// otpMaxAttempts caps verification attempts per session.
	otpMaxAttempts = 3
)

// OTPManager issues, expires, and verifies one-time codes. Each user holds at
// most one live session; issuing a new code invalidates the previous one
// immediately.
type OTPManager struct {
	mu       sync.Mutex
	sessions map[string]*models.OTPSession
	nowFn    func() time.Time
}

// NewOTPManager constructs an empty OTPManager. A nil nowFn defaults to
// time.Now.
func NewOTPManager(nowFn func() time.Time) *OTPManager {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &OTPManager{
		sessions: make(map[string]*models.OTPSession),
		nowFn:    nowFn,
	}
}

// generateCode returns a uniformly random six-digit code, leading zeros
// preserved.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue creates a fresh session for the user, replacing any existing one, and
// returns the code with its expiry.
func (m *OTPManager) Issue(userID string) (string, time.Time, error) {
	code, errGen := generateCode()
	if errGen != nil {
		return "", time.Time{}, errGen
	}
	expiresAt := m.nowFn().Add(otpLifetime)

	m.mu.Lock()
	m.sessions[userID] = &models.OTPSession{
		UserID:    userID,
		Code:      code,
		ExpiresAt: expiresAt,
		Attempts:  0,
	}
	m.mu.Unlock()
	return code, expiresAt, nil
}

// Verify checks a candidate code against the user's live session.
//
// The attempt counter is incremented before the comparison, so the fourth
// call on a session is rejected outright with ErrOTPTooManyAttempts without
// ever comparing the candidate. This asymmetry is the intended brute-force
// cap.
func (m *OTPManager) Verify(userID, candidate string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[userID]
	if !ok {
		return ErrNoOTPSession
	}

	if m.nowFn().After(session.ExpiresAt) {
		delete(m.sessions, userID)
		return ErrOTPExpired
	}

	session.Attempts++
	if session.Attempts > otpMaxAttempts {
		delete(m.sessions, userID)
		return ErrOTPTooManyAttempts
	}

	if session.Code != candidate {
		return ErrInvalidOTPCode
	}

	delete(m.sessions, userID)
	return nil
}

// RemainingSeconds reports the whole seconds left before the user's session
// expires, zero when no session exists or it has already expired.
func (m *OTPManager) RemainingSeconds(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[userID]
	if !ok {
		return 0
	}
	remaining := session.ExpiresAt.Sub(m.nowFn())
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

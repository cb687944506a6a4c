package auth

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/campus-id/portal-auth/internal/models"
	"github.com/campus-id/portal-auth/internal/security"
)

// LoginMeta carries optional network and device metadata for a login attempt.
type LoginMeta struct {
	IPAddress string
	UserAgent string
}

// Service is the authentication and session-risk core: credential
// verification, brute-force lockout, one-time-code issuance and verification,
// and login-history and security-settings bookkeeping. All state is held in
// memory; there is no retention policy beyond the ledger cap and OTP expiry.
//
// Operations on the same user are serialized by a per-user lock held only
// across read-modify-write of that user's state, never across password
// hashing.
type Service struct {
	store    *CredentialStore
	ledger   *AttemptLedger
	lockouts *LockoutTable
	otp      *OTPManager
	settings *SettingsStore
	hasher   *security.Hasher
	nowFn    func() time.Time

	lockMu    sync.Mutex
	userLocks map[string]*sync.Mutex
}

// NewService constructs a Service. A nil hasher defaults to the standard
// work factor; a nil nowFn defaults to time.Now.
func NewService(hasher *security.Hasher, nowFn func() time.Time) *Service {
	if hasher == nil {
		hasher = security.NewHasher()
	}
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{
		store:     NewCredentialStore(nowFn),
		ledger:    NewAttemptLedger(nowFn),
		lockouts:  NewLockoutTable(nowFn),
		otp:       NewOTPManager(nowFn),
		settings:  NewSettingsStore(),
		hasher:    hasher,
		nowFn:     nowFn,
		userLocks: make(map[string]*sync.Mutex),
	}
}

// userLock returns the mutex guarding the given user's mutable state.
func (s *Service) userLock(userID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	mu, ok := s.userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		s.userLocks[userID] = mu
	}
	return mu
}

// Register creates a new user. It fails with ErrDuplicateIdentity when the
// username, email, or phone is already taken.
func (s *Service) Register(username, email, phone, password string) (models.User, error) {
	hash, errHash := s.hasher.Hash(password)
	if errHash != nil {
		return models.User{}, errHash
	}
	user, errCreate := s.store.Create(username, email, phone, hash)
	if errCreate != nil {
		return models.User{}, errCreate
	}
	log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login verifies a username/password pair and returns the user ID on success.
//
// A login against an actively locked account is rejected before the password
// hash is consulted and leaves no ledger entry. Otherwise the attempt is
// recorded whatever the outcome; the fifth recent failure trips a 30-minute
// lock, and a successful login clears any lock unconditionally.
func (s *Service) Login(username, password string, meta LoginMeta) (string, error) {
	user, errLookup := s.store.LookupByUsername(username)
	if errLookup != nil {
		// Same response as a wrong password to avoid username enumeration.
		return "", ErrInvalidCredentials
	}

	mu := s.userLock(user.ID)
	mu.Lock()
	if locked, remaining := s.lockouts.Remaining(user.ID); locked {
		mu.Unlock()
		return "", &AccountLockedError{RemainingMinutes: remaining}
	}
	mu.Unlock()

	// Deliberately outside the user lock: hashing takes tens of milliseconds
	// and must not serialize other operations on the user.
	valid := s.hasher.Verify(password, user.PasswordHash)

	mu.Lock()
	defer mu.Unlock()

	s.ledger.Record(user.ID, models.LoginAttempt{
		Timestamp: s.nowFn(),
		Success:   valid,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	})

	if !valid {
		if s.ledger.RecentFailures(user.ID, lockoutWindow) >= lockoutThreshold {
			s.lockouts.Lock(user.ID)
			log.WithField("user_id", user.ID).Warn("account locked after repeated failures")
			return "", &AccountLockedError{JustLocked: true}
		}
		return "", ErrInvalidCredentials
	}

	s.lockouts.Clear(user.ID)
	return user.ID, nil
}

// IssueOTP creates a one-time code for the user, replacing any live session.
func (s *Service) IssueOTP(userID string) (string, time.Time, error) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	return s.otp.Issue(userID)
}

// VerifyOTP checks a candidate code against the user's live session.
func (s *Service) VerifyOTP(userID, candidate string) error {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	return s.otp.Verify(userID, candidate)
}

// OTPRemainingSeconds reports the seconds left on the user's OTP session.
func (s *Service) OTPRemainingSeconds(userID string) int {
	return s.otp.RemainingSeconds(userID)
}

// User returns the user record for the identifier.
func (s *Service) User(userID string) (models.User, error) {
	return s.store.GetByID(userID)
}

// LoginHistory returns the user's recorded attempts, most-recent-last.
func (s *Service) LoginHistory(userID string) []models.LoginAttempt {
	return s.ledger.History(userID)
}

// SecuritySettings returns the user's settings, defaulted when never written.
func (s *Service) SecuritySettings(userID string) models.SecuritySettings {
	return s.settings.Get(userID)
}

// UpdateSecuritySettings merges the patch into the user's settings.
func (s *Service) UpdateSecuritySettings(userID string, patch models.SecuritySettingsPatch) {
	mu := s.userLock(userID)
	mu.Lock()
	defer mu.Unlock()
	s.settings.Update(userID, patch)
}

// UserCount reports the number of registered users, for health reporting.
func (s *Service) UserCount() int {
	return s.store.Count()
}

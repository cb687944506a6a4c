package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable, user-facing failure modes of the core.
// The InvalidCredentials message is deliberately identical whether the
// username is unknown or the password is wrong.
var (
	ErrDuplicateIdentity  = errors.New("User already exists with this username, email, or phone")
	ErrInvalidCredentials = errors.New("Invalid username or password")
	ErrNoOTPSession       = errors.New("No OTP session found. Please request a new OTP.")
	ErrOTPExpired         = errors.New("OTP has expired. Please request a new one.")
	ErrOTPTooManyAttempts = errors.New("Too many failed attempts. Please request a new OTP.")
	ErrInvalidOTPCode     = errors.New("Invalid OTP. Please try again.")
	ErrNotFound           = errors.New("not found")
)

// AccountLockedError reports a rejected login on a locked account. JustLocked
// distinguishes the call that tripped the lock from calls arriving while the
// lock is already active.
type AccountLockedError struct {
	RemainingMinutes int
	JustLocked       bool
}

func (e *AccountLockedError) Error() string {
	if e.JustLocked {
		return "Too many failed attempts. Account locked for 30 minutes."
	}
	return fmt.Sprintf("Account locked. Try again in %d minutes.", e.RemainingMinutes)
}

// IsAccountLocked reports whether err is an AccountLockedError.
func IsAccountLocked(err error) bool {
	var locked *AccountLockedError
	return errors.As(err, &locked)
}

package models

import "time"

// OTPSession is the single live one-time-code session for a user.
// Issuing a new code replaces any existing session outright.
type OTPSession struct {
	UserID    string    // Owning user.
	Code      string    // Six ASCII digits, leading zeros preserved.
	ExpiresAt time.Time // Hard expiry, 60 seconds after issuance.
	Attempts  int       // Verification attempts consumed so far.
}

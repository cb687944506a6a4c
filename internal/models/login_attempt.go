package models

import "time"

// LoginAttempt records one password-login attempt against an account.
type LoginAttempt struct {
	Timestamp time.Time `json:"timestamp"`            // When the attempt happened.
	Success   bool      `json:"success"`              // Whether the password verified.
	IPAddress string    `json:"ip_address,omitempty"` // Source address, when known.
	UserAgent string    `json:"user_agent,omitempty"` // Client user agent, when known.
}

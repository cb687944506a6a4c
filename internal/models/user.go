package models

import "time"

// User represents a portal account held by the credential store.
type User struct {
	ID string `json:"id"` // Opaque unique identifier.

	Username string `json:"username"` // Unique login name.
	Email    string `json:"email"`    // Unique email address.
	Phone    string `json:"phone"`    // Unique phone number.

	PasswordHash string `json:"-"` // Hashed password, never serialized.

	CreatedAt time.Time `json:"created_at"` // Registration timestamp.
}

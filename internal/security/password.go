package security

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for newly hashed passwords.
const PasswordCost = 12

// Hasher hashes and verifies passwords with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher at the standard work factor.
func NewHasher() *Hasher {
	return &Hasher{cost: PasswordCost}
}

// NewHasherWithCost constructs a Hasher at a custom work factor. Costs outside
// bcrypt's supported range fall back to the standard factor.
func NewHasherWithCost(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = PasswordCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted one-way digest of the plaintext. Each call produces a
// different digest for the same input.
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. Malformed digests
// verify as false rather than erroring.
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

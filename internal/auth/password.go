package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost used when none is configured.
const DefaultCost = bcrypt.DefaultCost

// equalizerPassword is hashed once at construction. Comparing a submitted
// password against it makes the unknown-username login path as slow as the
// wrong-password path.
const equalizerPassword = "portfolio-login-timing-equalizer"

// BcryptHasher hashes and verifies administrator passwords with bcrypt.
// It is safe for concurrent use.
type BcryptHasher struct {
	cost      int
	dummyHash []byte
}

// NewBcryptHasher creates a hasher with the given cost. The cost must lie in
// bcrypt's accepted range.
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(equalizerPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHashingFailed, err)
	}

	return &BcryptHasher{cost: cost, dummyHash: dummy}, nil
}

// Hash returns the bcrypt hash of plaintext. Any failure, including a
// password longer than bcrypt's 72-byte limit, is reported as ErrHashingFailed.
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHashingFailed, err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A malformed hash yields
// false, the same as a wrong password.
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Equalize spends one bcrypt comparison and discards the result.
func (h *BcryptHasher) Equalize(plaintext string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(plaintext))
}

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrSecretTooLong is returned for secrets bcrypt would otherwise truncate.
var ErrSecretTooLong = errors.New("secret exceeds 72 bytes")

// maxSecretLength is the bcrypt input limit.
const maxSecretLength = 72

// Hasher hashes and verifies secrets (passwords and raw API keys) with bcrypt.
type Hasher struct {
	cost int
}

// NewHasher creates a Hasher. Costs outside bcrypt's range fall back to the default.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns a salted bcrypt digest of secret.
func (h *Hasher) Hash(secret string) (string, error) {
	if len(secret) > maxSecretLength {
		return "", ErrSecretTooLong
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. A malformed digest never matches.
func (h *Hasher) Verify(secret, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}

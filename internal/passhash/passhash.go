// Package passhash hashes and verifies user passwords with bcrypt.
package passhash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMalformedHash is returned by Verify when the stored value is not a bcrypt hash.
var ErrMalformedHash = errors.New("stored password hash is malformed")

// Hasher produces and checks salted bcrypt hashes with a fixed cost.
type Hasher struct {
	cost int
}

// New returns a Hasher using the given bcrypt cost.
// Costs outside [bcrypt.MinCost, bcrypt.MaxCost] are rejected.
func New(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	return &Hasher{cost: cost}, nil
}

// Hash returns the bcrypt hash of plaintext.
func (h *Hasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("in internal/passhash/passhash.go/Hash(): error while `bcrypt.GenerateFromPassword()` calling: %w", err)
	}

	return string(hashed), nil
}

// Verify reports whether plaintext matches hashed. A mismatch is (false, nil);
// an error means the stored hash itself is unusable.
func (h *Hasher) Verify(plaintext, hashed string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

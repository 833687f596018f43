package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch indicates the supplied password does not match the stored hash.
var ErrMismatch = errors.New("password mismatch")

// Hasher wraps bcrypt hashing behind a small injectable surface.
type Hasher struct {
	cost int
}

// NewHasher constructs a Hasher with the default bcrypt cost.
func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash creates a bcrypt hash for the supplied plain text password.
func (h *Hasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Compare verifies that the specified password matches the stored hash.
func (h *Hasher) Compare(hash string, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatch
		}
		return err
	}
	return nil
}

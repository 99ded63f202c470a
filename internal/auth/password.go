package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	// ErrPasswordMismatch is returned when a password does not match its hash.
	ErrPasswordMismatch = errors.New("auth: password mismatch")
	// ErrPasswordTooLong is returned by Hash for passwords over MaxPasswordBytes.
	ErrPasswordTooLong = errors.New("auth: password exceeds 72 bytes")
)

// PasswordHasher hashes and compares secrets with bcrypt at a fixed cost.
type PasswordHasher struct {
	cost  int
	dummy []byte
}

// NewPasswordHasher builds a hasher. A hash of a throwaway value is computed up
// front so lookups for unknown accounts can burn the same amount of work.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("event-service-dummy-password"), cost)
	if err != nil {
		return nil, err
	}
	return &PasswordHasher{cost: cost, dummy: dummy}, nil
}

// Hash hashes a plaintext password with the configured cost.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(hashed), nil
}

// Compare verifies a password against its hashed value.
// Inputs over MaxPasswordBytes never match, since bcrypt would only see a prefix.
func (h *PasswordHasher) Compare(hashed, plain string) error {
	if len(plain) > MaxPasswordBytes {
		h.CompareDummy(plain[:MaxPasswordBytes])
		return ErrPasswordMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	}
	return nil
}

// CompareDummy runs a comparison that always fails, at the same cost as Compare.
func (h *PasswordHasher) CompareDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(plain))
}

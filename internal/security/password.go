// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by CheckPassword for a wrong password.
var ErrPasswordMismatch = errors.New("password does not match")

// MinPasswordLength is enforced at registration.
const MinPasswordLength = 6

var hashCost = bcrypt.DefaultCost

// SetHashCost changes the bcrypt cost used by HashPassword. Values outside
// bcrypt's accepted range fall back to the default.
func SetHashCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashCost = cost
}

// HashPassword returns the bcrypt hash of the plaintext password.
func HashPassword(plain Secret) (string, error) {
	if plain.Empty() {
		return "", errors.New("empty password")
	}
	var hash []byte
	err := plain.Use(func(b []byte) error {
		var err error
		hash, err = bcrypt.GenerateFromPassword(b, hashCost)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a stored hash with a plaintext candidate.
func CheckPassword(hash string, plain Secret) error {
	err := plain.Use(func(b []byte) error {
		return bcrypt.CompareHashAndPassword([]byte(hash), b)
	})
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}

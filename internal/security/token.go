// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package security

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// NewToken returns an opaque 64 character session token built from two
// random (v4) UUIDs.
func NewToken() (string, error) {
	a, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	b, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	buf := make([]byte, 0, 32)
	buf = append(buf, a[:]...)
	buf = append(buf, b[:]...)
	return hex.EncodeToString(buf), nil
}

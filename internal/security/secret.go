// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package security holds credential helpers: a redacting Secret for
// plaintext passwords, bcrypt hashing and session token generation.
package security

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"
)

// Secret is a thin wrapper around a byte slice holding a plaintext password.
// It redacts itself in fmt output and JSON encoding so it cannot leak into
// logs or responses. It can be decoded from a JSON string.
type Secret []byte

// String redacts the secret for fmt.Print* convenience.
func (s Secret) String() string { return "[SECRET]" }

// Format implements fmt.Formatter to ensure `%v`, `%#v` and friends are redacted.
func (s Secret) Format(f fmt.State, c rune) {
	_, _ = io.WriteString(f, "[SECRET]")
}

// Bytes returns a copy of the underlying bytes.
func (s Secret) Bytes() []byte {
	out := make([]byte, len(s))
	copy(out, s)
	return out
}

// Use executes fn with the underlying bytes (not a copy).
func (s Secret) Use(fn func([]byte) error) error {
	return fn([]byte(s))
}

// Len returns the number of bytes in the secret.
func (s Secret) Len() int { return len(s) }

// RuneLen returns the number of characters in the secret.
func (s Secret) RuneLen() int { return utf8.RuneCount(s) }

// Empty reports whether no secret was supplied.
func (s Secret) Empty() bool { return len(s) == 0 }

// Zero overwrites the underlying byte slice with zeros.
func (s *Secret) Zero() {
	if s == nil || *s == nil {
		return
	}
	for i := range *s {
		(*s)[i] = 0
	}
}

// MarshalJSON redacts secrets in JSON marshaling.
func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal("[SECRET]") }

// MarshalText redacts secrets for text encoding.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[SECRET]"), nil }

// UnmarshalJSON reads a JSON string (or null) into the secret.
func (s *Secret) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("secret must be a string: %w", err)
	}
	*s = Secret(str)
	return nil
}

// FromString creates a Secret from a string input.
func FromString(in string) Secret { return Secret([]byte(in)) }

// FromBytes creates a Secret from bytes (it makes a copy).
func FromBytes(in []byte) Secret {
	out := make([]byte, len(in))
	copy(out, in)
	return Secret(out)
}

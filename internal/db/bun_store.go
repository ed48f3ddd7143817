// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// BunStore implements Store on top of a long-lived *bun.DB.
type BunStore struct {
	bun     *bun.DB
	dialect string
}

// Dialect returns the database type the store was opened with.
func (s *BunStore) Dialect() string {
	return s.dialect
}

// Ping checks that the database is reachable.
func (s *BunStore) Ping(ctx context.Context) error {
	return s.bun.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *BunStore) Close() error {
	return s.bun.Close()
}

// clock is the time source used for post timestamps. Stored times keep microsecond
// precision on every engine.
var clock = func() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// likeExpr returns a LIKE comparison for column that honours backslash
// escapes on every dialect.
func (s *BunStore) likeExpr(column string) string {
	if s.dialect == "sqlite" {
		return "LOWER(" + column + `) LIKE ? ESCAPE '\'`
	}
	return "LOWER(" + column + ") LIKE ?"
}

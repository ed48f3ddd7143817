// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"database/sql"
	"errors"
	"strings"
)

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned when a post points at a category or
	// author that does not exist.
	ErrInvalidReference = errors.New("invalid reference")
)

// MapDBError inspects low-level driver errors and maps common constraint
// violations to package-level sentinel errors. The mapping is string-based so
// this file does not depend on any particular SQL driver.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry, Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	// Foreign key violations: Postgres 23503, MySQL 1452, SQLite "FOREIGN KEY constraint failed"
	if strings.Contains(le, "foreign key") || strings.Contains(le, "23503") || strings.Contains(le, "1452") {
		return ErrInvalidReference
	}
	return err
}

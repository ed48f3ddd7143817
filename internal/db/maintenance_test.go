// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"
	"time"
)

func TestRunDBMaintenance_Sqlite(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		ctx := context.Background()
		dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
		// Run maintenance; should complete without error.
		if err := RunDBMaintenance(ctx, "sqlite", dsn, MaintenanceOptions{Timeout: 30 * time.Second}); err != nil {
			t.Fatalf("RunDBMaintenance(sqlite) failed: %v", err)
		}
		// Make sure we can still use the DB after maintenance.
		if _, err := s.ListCategories(ctx); err != nil {
			t.Fatalf("ListCategories after maintenance failed: %v", err)
		}
	})
}

func TestRunDBMaintenance_UnsupportedType(t *testing.T) {
	err := RunDBMaintenance(context.Background(), "sqlite-ish", "x", MaintenanceOptions{})
	if err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}

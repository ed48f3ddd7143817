// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"
)

func TestNewStoreFromDSN_Dialect(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		if s.Dialect() != "sqlite" {
			t.Fatalf("unexpected dialect %q", s.Dialect())
		}
	})
	if _, err := NewStoreFromDSN("oracle", "x"); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

func TestExecRawAndQueryRawInto(t *testing.T) {
	WithTestStore(t, func(s *BunStore) {
		ctx := context.Background()
		err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			_, err := ExecRaw(ctx, tx, "INSERT INTO categories (name) VALUES (?)", "Raw")
			return err
		})
		if err != nil {
			t.Fatalf("ExecRaw in tx failed: %v", err)
		}

		var n int
		if err := QueryRawInto(ctx, s.bun, &n, "SELECT COUNT(*) FROM categories WHERE name = ?", "Raw"); err != nil {
			t.Fatalf("QueryRawInto failed: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 row, got %d", n)
		}

		var id int
		if err := QueryRawInto(ctx, s.bun, &id, "SELECT id FROM categories WHERE name = ?", "Raw"); err != nil {
			t.Fatalf("QueryRawInto id failed: %v", err)
		}
		ok, err := rowExists(ctx, s.bun, "categories", id)
		if err != nil || !ok {
			t.Fatalf("rowExists(%d) = %v, %v", id, ok, err)
		}
		ok, err = rowExists(ctx, s.bun, "categories", id+100)
		if err != nil || ok {
			t.Fatalf("rowExists(missing) = %v, %v", ok, err)
		}

		res, err := ExecRaw(ctx, s.bun, "DELETE FROM categories WHERE id = ?", id+100)
		if err != nil {
			t.Fatalf("ExecRaw delete failed: %v", err)
		}
		if err := affectedOrNotFound(res); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound for zero rows, got %v", err)
		}
	})
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/toeirei/blog/internal/model"
)

// WithTestStore opens an in-memory sqlite Store named after the test, runs
// all migrations and closes it once fn returns.
func WithTestStore(t *testing.T, fn func(s *BunStore)) {
	t.Helper()

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	st, err := NewStoreFromDSN("sqlite", dsn)
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	s, ok := st.(*BunStore)
	if !ok {
		t.Fatalf("store is not *BunStore")
	}
	defer func() { _ = s.Close() }()

	fn(s)
}

// seedAuthorAndCategory inserts one user and one category for post tests.
func seedAuthorAndCategory(t *testing.T, s *BunStore) (*model.User, *model.Category) {
	t.Helper()
	ctx := context.Background()
	u := &model.User{Email: "author@example.com", Username: "author", Password: "hash"}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	c := &model.Category{Name: "Technology"}
	if err := s.CreateCategory(ctx, c); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	return u, c
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package fixtures seeds a database with demo content.
package fixtures

import (
	"context"
	"errors"
	"fmt"

	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
)

// Demo account credentials.
const (
	DemoEmail    = "johndoe@example.com"
	DemoPassword = "password123"
	DemoUsername = "johndoe"
	DemoPostSlug = "my-first-post"
)

// DemoCategories are created when no category with the same name exists.
var DemoCategories = []string{"Technology", "Health", "Science"}

// Result counts what Load created.
type Result struct {
	Users      int
	Categories int
	Posts      int
}

// Load seeds the demo user, categories and first post. Running it again
// creates nothing new.
func Load(ctx context.Context, store db.Store) (Result, error) {
	var res Result

	author, err := store.GetUserByEmail(ctx, DemoEmail)
	switch {
	case errors.Is(err, db.ErrNotFound):
		hash, err := security.HashPassword(security.FromString(DemoPassword))
		if err != nil {
			return res, err
		}
		author = &model.User{Email: DemoEmail, Username: DemoUsername, Password: hash, Roles: []string{}}
		if err := store.CreateUser(ctx, author); err != nil {
			return res, fmt.Errorf("create demo user: %w", err)
		}
		res.Users++
	case err != nil:
		return res, fmt.Errorf("look up demo user: %w", err)
	}

	existing, err := store.ListCategories(ctx)
	if err != nil {
		return res, fmt.Errorf("list categories: %w", err)
	}
	byName := make(map[string]int, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}
	for _, name := range DemoCategories {
		if _, ok := byName[name]; ok {
			continue
		}
		c := &model.Category{Name: name}
		if err := store.CreateCategory(ctx, c); err != nil {
			return res, fmt.Errorf("create category %s: %w", name, err)
		}
		byName[name] = c.ID
		res.Categories++
	}

	_, err = store.GetPostBySlug(ctx, DemoPostSlug)
	switch {
	case errors.Is(err, db.ErrNotFound):
		p := &model.Post{
			Title:      "My first post",
			Content:    "Welcome to the blog! This post was created by the demo fixtures.",
			Slug:       DemoPostSlug,
			CategoryID: byName[DemoCategories[0]],
			AuthorID:   author.ID,
		}
		if err := store.CreatePost(ctx, p); err != nil {
			return res, fmt.Errorf("create demo post: %w", err)
		}
		res.Posts++
	case err != nil:
		return res, fmt.Errorf("look up demo post: %w", err)
	}
	return res, nil
}

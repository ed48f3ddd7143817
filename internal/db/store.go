// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"time"

	"github.com/toeirei/blog/internal/model"
)

// PostFilter narrows ListPosts. Zero values disable a filter.
type PostFilter struct {
	CategoryID int
	AuthorID   int
	// Query is matched case-insensitively against title and content; every
	// whitespace separated token must match.
	Query string
}

// Store defines the interface for all database operations of the blog.
// Collections are ordered by id and never paginated.
type Store interface {
	Ping(ctx context.Context) error

	// User methods
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id int) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id int) error

	// Category methods
	CreateCategory(ctx context.Context, c *model.Category) error
	GetCategory(ctx context.Context, id int) (*model.Category, error)
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id int) error

	// Post methods
	CreatePost(ctx context.Context, p *model.Post) error
	GetPost(ctx context.Context, id int) (*model.Post, error)
	GetPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error)
	UpdatePost(ctx context.Context, p *model.Post) error
	DeletePost(ctx context.Context, id int) error

	// Session methods
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Backup methods
	Export(ctx context.Context) (*model.BackupData, error)
	Import(ctx context.Context, data *model.BackupData, full bool) error

	Close() error
}

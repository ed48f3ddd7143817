// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"time"

	"github.com/toeirei/blog/internal/model"
	"github.com/uptrace/bun"
)

// UserModel maps the users table for Bun queries.
type UserModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	ID            int         `bun:"id,pk,autoincrement"`
	Email         string      `bun:"email,notnull"`
	Roles         []string    `bun:"roles,notnull"`
	Password      string      `bun:"password,notnull"`
	Username      string      `bun:"username,notnull"`
	Posts         []PostModel `bun:"rel:has-many,join:id=author_id"`
}

// CategoryModel maps the categories table.
type CategoryModel struct {
	bun.BaseModel `bun:"table:categories,alias:c"`
	ID            int         `bun:"id,pk,autoincrement"`
	Name          string      `bun:"name,notnull"`
	Posts         []PostModel `bun:"rel:has-many,join:id=category_id"`
}

// PostModel maps the posts table. Category and Author are filled when the
// matching relations are requested.
type PostModel struct {
	bun.BaseModel `bun:"table:posts,alias:p"`
	ID            int            `bun:"id,pk,autoincrement"`
	Title         string         `bun:"title,notnull"`
	Content       string         `bun:"content,notnull"`
	Slug          string         `bun:"slug,notnull"`
	CreatedAt     time.Time      `bun:"created_at,notnull"`
	UpdatedAt     time.Time      `bun:"updated_at,notnull"`
	CategoryID    int            `bun:"category_id,notnull"`
	AuthorID      int            `bun:"author_id,notnull"`
	Category      *CategoryModel `bun:"rel:belongs-to,join:category_id=id"`
	Author        *UserModel     `bun:"rel:belongs-to,join:author_id=id"`
}

// SessionModel maps the sessions table.
type SessionModel struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`
	Token         string    `bun:"token,pk"`
	UserID        int       `bun:"user_id,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	ExpiresAt     time.Time `bun:"expires_at,notnull"`
	RememberMe    bool      `bun:"remember_me,notnull"`
}

func rolesOrEmpty(roles []string) []string {
	if roles == nil {
		return []string{}
	}
	return roles
}

func userModelFrom(u *model.User) *UserModel {
	return &UserModel{
		ID:       u.ID,
		Email:    u.Email,
		Roles:    rolesOrEmpty(u.Roles),
		Password: u.Password,
		Username: u.Username,
	}
}

func userModelToModel(m UserModel) model.User {
	u := model.User{
		ID:       m.ID,
		Email:    m.Email,
		Roles:    rolesOrEmpty(m.Roles),
		Password: m.Password,
		Username: m.Username,
	}
	if len(m.Posts) > 0 {
		u.Posts = make([]model.Post, 0, len(m.Posts))
		for _, p := range m.Posts {
			u.Posts = append(u.Posts, postModelToModel(p))
		}
	}
	return u
}

func categoryModelToModel(m CategoryModel) model.Category {
	c := model.Category{ID: m.ID, Name: m.Name}
	if len(m.Posts) > 0 {
		c.Posts = make([]model.Post, 0, len(m.Posts))
		for _, p := range m.Posts {
			c.Posts = append(c.Posts, postModelToModel(p))
		}
	}
	return c
}

func postModelFrom(p *model.Post) *PostModel {
	return &PostModel{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Slug:       p.Slug,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
		CategoryID: p.CategoryID,
		AuthorID:   p.AuthorID,
	}
}

func postModelToModel(m PostModel) model.Post {
	p := model.Post{
		ID:         m.ID,
		Title:      m.Title,
		Content:    m.Content,
		Slug:       m.Slug,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		CategoryID: m.CategoryID,
		AuthorID:   m.AuthorID,
	}
	if m.Category != nil && m.Category.ID != 0 {
		c := model.Category{ID: m.Category.ID, Name: m.Category.Name}
		p.Category = &c
	}
	if m.Author != nil && m.Author.ID != 0 {
		a := model.User{ID: m.Author.ID, Email: m.Author.Email, Username: m.Author.Username, Roles: rolesOrEmpty(m.Author.Roles)}
		p.Author = &a
	}
	return p
}

func sessionModelToModel(m SessionModel) model.Session {
	return model.Session{
		Token:      m.Token,
		UserID:     m.UserID,
		CreatedAt:  m.CreatedAt,
		ExpiresAt:  m.ExpiresAt,
		RememberMe: m.RememberMe,
	}
}

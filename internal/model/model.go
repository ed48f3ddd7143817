// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model holds the blog entities (User, Category, Post) together with
// their validation rules. The types are persistence-agnostic; the db package
// maps them onto tables.
package model

import (
	"fmt"
	"slices"
	"time"
)

// RoleUser is granted to every user, whether or not it is stored.
const RoleUser = "ROLE_USER"

// RoleAdmin bypasses ownership checks.
const RoleAdmin = "ROLE_ADMIN"

// User is a registered account. Password always holds a hash, never the
// plaintext.
type User struct {
	ID       int
	Email    string
	Roles    []string
	Password string
	Username string
	Posts    []Post
}

// UserIdentifier returns the identifier used at login (the email).
func (u User) UserIdentifier() string {
	return u.Email
}

// EffectiveRoles returns the stored roles plus ROLE_USER, deduplicated.
func (u User) EffectiveRoles() []string {
	out := make([]string, 0, len(u.Roles)+1)
	for _, r := range u.Roles {
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	if !slices.Contains(out, RoleUser) {
		out = append(out, RoleUser)
	}
	return out
}

// HasRole reports whether role is among the effective roles.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.EffectiveRoles(), role)
}

// IRI returns the resource path of the user.
func (u User) IRI() string {
	return fmt.Sprintf("/users/%d", u.ID)
}

// Category groups posts.
type Category struct {
	ID    int
	Name  string
	Posts []Post
}

// IRI returns the resource path of the category.
func (c Category) IRI() string {
	return fmt.Sprintf("/categories/%d", c.ID)
}

// Post is a blog article. CategoryID and AuthorID are the owning side of the
// relations; Category and Author are populated when loaded with relations.
type Post struct {
	ID         int
	Title      string
	Content    string
	Slug       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	CategoryID int
	AuthorID   int
	Category   *Category
	Author     *User
}

// IRI returns the resource path of the post.
func (p Post) IRI() string {
	return fmt.Sprintf("/posts/%d", p.ID)
}

// Touch maintains the timestamps. On create missing timestamps are set to
// now; on update only UpdatedAt moves.
func (p *Post) Touch(now time.Time, create bool) {
	if create {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = now
		}
		return
	}
	p.UpdatedAt = now
}

// Session binds an opaque token to a user until ExpiresAt.
type Session struct {
	Token      string
	UserID     int
	CreatedAt  time.Time
	ExpiresAt  time.Time
	RememberMe bool
}

// Expired reports whether the session is no longer valid at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

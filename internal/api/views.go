// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"time"

	"github.com/toeirei/blog/internal/model"
)

type categoryPostView struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Slug    string `json:"slug"`
}

type categoryView struct {
	ID    int                `json:"id"`
	Name  string             `json:"name"`
	Posts []categoryPostView `json:"posts"`
}

func newCategoryView(c model.Category) categoryView {
	v := categoryView{ID: c.ID, Name: c.Name, Posts: make([]categoryPostView, 0, len(c.Posts))}
	for _, p := range c.Posts {
		v.Posts = append(v.Posts, categoryPostView{ID: p.ID, Title: p.Title, Content: p.Content, Slug: p.Slug})
	}
	return v
}

type postCategoryView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type postAuthorView struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type postView struct {
	ID        int               `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
	Slug      string            `json:"slug"`
	Category  *postCategoryView `json:"category"`
	Author    *postAuthorView   `json:"author"`
}

func newPostView(p model.Post) postView {
	v := postView{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
		Slug:      p.Slug,
	}
	if p.Category != nil {
		v.Category = &postCategoryView{ID: p.Category.ID, Name: p.Category.Name}
	}
	if p.Author != nil {
		v.Author = &postAuthorView{ID: p.Author.ID, Username: p.Author.Username}
	}
	return v
}

type userView struct {
	ID       int      `json:"id"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Username string   `json:"username"`
	Posts    []string `json:"posts"`
}

func newUserView(u model.User) userView {
	v := userView{ID: u.ID, Email: u.Email, Roles: u.EffectiveRoles(), Username: u.Username, Posts: make([]string, 0, len(u.Posts))}
	for _, p := range u.Posts {
		v.Posts = append(v.Posts, p.IRI())
	}
	return v
}

type sessionView struct {
	Token     string   `json:"token"`
	ExpiresAt string   `json:"expiresAt"`
	User      userView `json:"user"`
}

func newSessionView(s *model.Session, u model.User) sessionView {
	return sessionView{Token: s.Token, ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339), User: newUserView(u)}
}

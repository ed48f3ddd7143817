// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/model"
)

const resourcePost = "post"

type postInput struct {
	Title    *string         `json:"title"`
	Content  *string         `json:"content"`
	Slug     *string         `json:"slug"`
	Category json.RawMessage `json:"category"`
	Author   json.RawMessage `json:"author"`
}

// apply copies the input onto p. With replace, absent fields are cleared and
// an absent author falls back to defaultAuthor.
func (in postInput) apply(p *model.Post, replace bool, defaultAuthor int) error {
	setString := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		} else if replace {
			*dst = ""
		}
	}
	setString(&p.Title, in.Title)
	setString(&p.Content, in.Content)
	setString(&p.Slug, in.Slug)

	if in.Category != nil || replace {
		id, err := parseReference(in.Category, "/categories")
		if err != nil {
			return err
		}
		p.CategoryID = id
	}
	if in.Author != nil || replace {
		id, err := parseReference(in.Author, "/users")
		if err != nil {
			return err
		}
		if id == 0 && len(in.Author) == 0 {
			id = defaultAuthor
		}
		p.AuthorID = id
	}
	if p.Slug == "" {
		p.Slug = model.Slugify(p.Title)
	}
	return nil
}

// storePostError turns store failures into field violations where the
// client can fix them.
func storePostError(c *requestContext, err error) error {
	switch {
	case errors.Is(err, db.ErrDuplicate):
		return violation("slug", c.tr.T("validation.slug_taken"))
	case errors.Is(err, db.ErrInvalidReference):
		return badRequest(c.tr.T("validation.invalid_reference", "category/author"), err)
	}
	return err
}

// postFilter reads the category, author and q query parameters.
func postFilter(c *requestContext) (db.PostFilter, error) {
	q := c.r.URL.Query()
	f := db.PostFilter{Query: strings.TrimSpace(q.Get("q"))}
	if v := q.Get("category"); v != "" {
		id, err := parseReferenceString(v, "/categories")
		if err != nil {
			return f, err
		}
		f.CategoryID = id
	}
	if v := q.Get("author"); v != "" {
		id, err := parseReferenceString(v, "/users")
		if err != nil {
			return f, err
		}
		f.AuthorID = id
	}
	return f, nil
}

func (s *Server) listPosts(c *requestContext) error {
	f, err := postFilter(c)
	if err != nil {
		return err
	}
	posts, err := s.store.ListPosts(c.context(), f)
	if err != nil {
		return err
	}
	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, newPostView(p))
	}
	return c.writeJSON(http.StatusOK, out)
}

func (s *Server) getPost(c *requestContext) error {
	id, err := c.pathID()
	if err != nil {
		return err
	}
	p, err := s.store.GetPost(c.context(), id)
	if err != nil {
		return err
	}
	return c.writeJSON(http.StatusOK, newPostView(*p))
}

func (s *Server) createPost(c *requestContext) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	var in postInput
	if err := c.decode(&in); err != nil {
		return err
	}
	var p model.Post
	if err := in.apply(&p, true, c.principal.User.ID); err != nil {
		return err
	}
	if err := p.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.CreatePost(c.context(), &p); err != nil {
		return storePostError(c, err)
	}
	saved, err := s.store.GetPost(c.context(), p.ID)
	if err != nil {
		return err
	}
	view := newPostView(*saved)
	s.publish(c, resourcePost, events.ActionCreated, p.ID, view)
	c.w.Header().Set("Location", p.IRI())
	return c.writeJSON(http.StatusCreated, view)
}

func (s *Server) replacePost(c *requestContext) error {
	return s.updatePost(c, true)
}

func (s *Server) patchPost(c *requestContext) error {
	return s.updatePost(c, false)
}

func (s *Server) updatePost(c *requestContext, replace bool) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	id, err := c.pathID()
	if err != nil {
		return err
	}
	p, err := s.store.GetPost(c.context(), id)
	if err != nil {
		return err
	}
	var in postInput
	if err := c.decode(&in); err != nil {
		return err
	}
	if err := in.apply(p, replace, c.principal.User.ID); err != nil {
		return err
	}
	if err := p.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.UpdatePost(c.context(), p); err != nil {
		return storePostError(c, err)
	}
	saved, err := s.store.GetPost(c.context(), id)
	if err != nil {
		return err
	}
	view := newPostView(*saved)
	s.publish(c, resourcePost, events.ActionUpdated, id, view)
	return c.writeJSON(http.StatusOK, view)
}

func (s *Server) deletePost(c *requestContext) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	id, err := c.pathID()
	if err != nil {
		return err
	}
	if err := s.store.DeletePost(c.context(), id); err != nil {
		return err
	}
	s.publish(c, resourcePost, events.ActionDeleted, id, nil)
	return c.noContent()
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"net/http"
	"strings"

	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/model"
)

const resourceCategory = "category"

type categoryInput struct {
	Name *string `json:"name"`
}

// apply copies the input onto c. With replace, absent fields are cleared.
func (in categoryInput) apply(c *model.Category, replace bool) {
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	} else if replace {
		c.Name = ""
	}
}

func (s *Server) listCategories(c *requestContext) error {
	cats, err := s.store.ListCategories(c.context())
	if err != nil {
		return err
	}
	out := make([]categoryView, 0, len(cats))
	for _, cat := range cats {
		out = append(out, newCategoryView(cat))
	}
	return c.writeJSON(http.StatusOK, out)
}

func (s *Server) getCategory(c *requestContext) error {
	id, err := c.pathID()
	if err != nil {
		return err
	}
	cat, err := s.store.GetCategory(c.context(), id)
	if err != nil {
		return err
	}
	return c.writeJSON(http.StatusOK, newCategoryView(*cat))
}

func (s *Server) createCategory(c *requestContext) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	var in categoryInput
	if err := c.decode(&in); err != nil {
		return err
	}
	var cat model.Category
	in.apply(&cat, true)
	if err := cat.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.CreateCategory(c.context(), &cat); err != nil {
		return err
	}
	saved, err := s.store.GetCategory(c.context(), cat.ID)
	if err != nil {
		return err
	}
	s.publish(c, resourceCategory, events.ActionCreated, cat.ID, newCategoryView(*saved))
	c.w.Header().Set("Location", cat.IRI())
	return c.writeJSON(http.StatusCreated, newCategoryView(*saved))
}

func (s *Server) replaceCategory(c *requestContext) error {
	return s.updateCategory(c, true)
}

func (s *Server) patchCategory(c *requestContext) error {
	return s.updateCategory(c, false)
}

func (s *Server) updateCategory(c *requestContext, replace bool) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	id, err := c.pathID()
	if err != nil {
		return err
	}
	cat, err := s.store.GetCategory(c.context(), id)
	if err != nil {
		return err
	}
	var in categoryInput
	if err := c.decode(&in); err != nil {
		return err
	}
	in.apply(cat, replace)
	if err := cat.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.UpdateCategory(c.context(), cat); err != nil {
		return err
	}
	saved, err := s.store.GetCategory(c.context(), id)
	if err != nil {
		return err
	}
	s.publish(c, resourceCategory, events.ActionUpdated, id, newCategoryView(*saved))
	return c.writeJSON(http.StatusOK, newCategoryView(*saved))
}

// deleteCategory removes the category together with its posts.
func (s *Server) deleteCategory(c *requestContext) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	id, err := c.pathID()
	if err != nil {
		return err
	}
	if err := s.store.DeleteCategory(c.context(), id); err != nil {
		return err
	}
	s.publish(c, resourceCategory, events.ActionDeleted, id, nil)
	return c.noContent()
}

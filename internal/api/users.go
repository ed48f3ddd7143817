// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
)

const resourceUser = "user"

type userInput struct {
	Email    *string          `json:"email"`
	Username *string          `json:"username"`
	Password *security.Secret `json:"password"`
	Roles    *[]string        `json:"roles"`
}

func (in *userInput) zero() {
	if in.Password != nil {
		in.Password.Zero()
	}
}

// apply copies the input onto u, hashing a supplied password. Roles are
// only taken from administrators; for anyone else they are ignored.
func (in userInput) apply(c *requestContext, u *model.User, replace bool) error {
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	} else if replace {
		u.Email = ""
	}
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	} else if replace {
		u.Username = ""
	}
	if in.Roles != nil && c.principal.IsGranted(model.RoleAdmin) {
		u.Roles = append([]string{}, (*in.Roles)...)
	}
	switch {
	case in.Password != nil && !in.Password.Empty():
		hash, err := security.HashPassword(*in.Password)
		if err != nil {
			return err
		}
		u.Password = hash
	case replace || in.Password != nil:
		u.Password = ""
	}
	return nil
}

func storeUserError(c *requestContext, err error) error {
	if errors.Is(err, db.ErrDuplicate) {
		return violation("email", c.tr.T("validation.email_taken"))
	}
	return err
}

func (s *Server) listUsers(c *requestContext) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	users, err := s.store.ListUsers(c.context())
	if err != nil {
		return err
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, newUserView(u))
	}
	return c.writeJSON(http.StatusOK, out)
}

func (s *Server) getUser(c *requestContext) error {
	id, err := c.pathID()
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.principal, id); err != nil {
		return err
	}
	u, err := s.store.GetUser(c.context(), id)
	if err != nil {
		return err
	}
	return c.writeJSON(http.StatusOK, newUserView(*u))
}

// createUser is public so that accounts can be opened without a session.
func (s *Server) createUser(c *requestContext) error {
	var in userInput
	if err := c.decode(&in); err != nil {
		return err
	}
	defer in.zero()
	var u model.User
	if err := in.apply(c, &u, true); err != nil {
		return err
	}
	if err := u.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.CreateUser(c.context(), &u); err != nil {
		return storeUserError(c, err)
	}
	saved, err := s.store.GetUser(c.context(), u.ID)
	if err != nil {
		return err
	}
	view := newUserView(*saved)
	s.publish(c, resourceUser, events.ActionCreated, u.ID, view)
	c.w.Header().Set("Location", u.IRI())
	return c.writeJSON(http.StatusCreated, view)
}

func (s *Server) replaceUser(c *requestContext) error {
	return s.updateUser(c, true)
}

func (s *Server) patchUser(c *requestContext) error {
	return s.updateUser(c, false)
}

func (s *Server) updateUser(c *requestContext, replace bool) error {
	id, err := c.pathID()
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.principal, id); err != nil {
		return err
	}
	u, err := s.store.GetUser(c.context(), id)
	if err != nil {
		return err
	}
	var in userInput
	if err := c.decode(&in); err != nil {
		return err
	}
	defer in.zero()
	if err := in.apply(c, u, replace); err != nil {
		return err
	}
	if err := u.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.UpdateUser(c.context(), u); err != nil {
		return storeUserError(c, err)
	}
	saved, err := s.store.GetUser(c.context(), id)
	if err != nil {
		return err
	}
	view := newUserView(*saved)
	s.publish(c, resourceUser, events.ActionUpdated, id, view)
	return c.writeJSON(http.StatusOK, view)
}

// deleteUser removes the account with its posts and sessions.
func (s *Server) deleteUser(c *requestContext) error {
	id, err := c.pathID()
	if err != nil {
		return err
	}
	if err := auth.RequireSelf(c.principal, id); err != nil {
		return err
	}
	if err := s.store.DeleteUser(c.context(), id); err != nil {
		return err
	}
	s.publish(c, resourceUser, events.ActionDeleted, id, nil)
	return c.noContent()
}

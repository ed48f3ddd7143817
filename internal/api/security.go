// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/toeirei/blog/internal/auth"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/events"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
)

type registrationInput struct {
	Email         string          `json:"email"`
	Username      string          `json:"username"`
	PlainPassword security.Secret `json:"plainPassword"`
	AgreeTerms    bool            `json:"agreeTerms"`
}

type loginInput struct {
	Email      string          `json:"email"`
	Password   security.Secret `json:"password"`
	RememberMe bool            `json:"rememberMe"`
}

// validate reports every registration problem at once.
func (in registrationInput) validate(c *requestContext) model.Violations {
	var out model.Violations
	if strings.TrimSpace(in.Email) == "" {
		out = append(out, model.Violation{PropertyPath: "email", Message: c.tr.T("registration.email_blank")})
	}
	if strings.TrimSpace(in.Username) == "" {
		out = append(out, model.Violation{PropertyPath: "username", Message: c.tr.T("registration.username_blank")})
	}
	switch {
	case in.PlainPassword.Empty():
		out = append(out, model.Violation{PropertyPath: "plainPassword", Message: c.tr.T("registration.password_blank")})
	case in.PlainPassword.RuneLen() < security.MinPasswordLength:
		out = append(out, model.Violation{PropertyPath: "plainPassword", Message: c.tr.T("registration.password_short", security.MinPasswordLength)})
	}
	if !in.AgreeTerms {
		out = append(out, model.Violation{PropertyPath: "agreeTerms", Message: c.tr.T("registration.terms")})
	}
	return out
}

func (s *Server) register(c *requestContext) error {
	var in registrationInput
	if err := c.decode(&in); err != nil {
		return err
	}
	defer in.PlainPassword.Zero()
	if err := in.validate(c).Err(); err != nil {
		return err
	}
	hash, err := security.HashPassword(in.PlainPassword)
	if err != nil {
		return err
	}
	u := model.User{
		Email:    strings.TrimSpace(in.Email),
		Username: strings.TrimSpace(in.Username),
		Roles:    []string{},
		Password: hash,
	}
	if err := u.Validate().Err(); err != nil {
		return err
	}
	if err := s.store.CreateUser(c.context(), &u); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return violation("email", c.tr.T("registration.email_taken"))
		}
		return err
	}
	sess, err := s.auth.AuthenticateUser(c.context(), &u)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sess)
	s.publish(c, resourceUser, events.ActionRegistered, u.ID, newUserView(u))
	c.w.Header().Set("Location", u.IRI())
	return c.writeJSON(http.StatusCreated, newSessionView(sess, u))
}

func (s *Server) login(c *requestContext) error {
	var in loginInput
	if err := c.decode(&in); err != nil {
		return err
	}
	defer in.Password.Zero()
	passport, err := s.auth.Authenticate(c.context(), auth.Credentials{
		Email:      in.Email,
		Password:   in.Password,
		RememberMe: in.RememberMe,
	})
	if err != nil {
		return err
	}
	sess, err := s.auth.OnSuccess(c.context(), passport)
	if err != nil {
		return err
	}
	s.setSessionCookie(c, sess)
	return c.writeJSON(http.StatusOK, newSessionView(sess, *passport.User))
}

func (s *Server) currentUser(c *requestContext) error {
	if err := auth.RequireRole(c.principal, model.RoleUser); err != nil {
		return err
	}
	return c.writeJSON(http.StatusOK, newUserView(*c.principal.User))
}

// logout ends the current session, if any, and clears the cookie.
func (s *Server) logout(c *requestContext) error {
	token := c.principal.Token()
	if token == "" {
		token = tokenFrom(c.r)
	}
	if err := s.auth.Logout(c.context(), token); err != nil && !errors.Is(err, auth.ErrNoSession) {
		return err
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	return c.noContent()
}

// setSessionCookie stores the token in an HttpOnly cookie. Remember-me
// sessions get a persistent cookie, others a browser-session cookie.
func (s *Server) setSessionCookie(c *requestContext, sess *model.Session) {
	ck := &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if sess.RememberMe {
		ck.Expires = sess.ExpiresAt
		ck.MaxAge = int(time.Until(sess.ExpiresAt).Seconds())
	}
	http.SetCookie(c.w, ck)
}

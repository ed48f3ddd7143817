// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package auth authenticates users from credentials or session tokens and
// decides what an authenticated principal may do.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
)

var (
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned when a token refers to an expired session.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoSession is returned when a token does not refer to any session.
	ErrNoSession = errors.New("no session")
)

// Default session lifetimes.
const (
	DefaultTTL         = 24 * time.Hour
	DefaultRememberTTL = 7 * 24 * time.Hour
)

// UserProvider loads users for the authenticator. db.Store satisfies it.
type UserProvider interface {
	GetUser(ctx context.Context, id int) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// Credentials are the login form fields.
type Credentials struct {
	Email      string
	Password   security.Secret
	RememberMe bool
}

// Passport is the result of a successful credential check.
type Passport struct {
	User       *model.User
	RememberMe bool
}

// Config sets session lifetimes. Zero values use the defaults.
type Config struct {
	TTL         time.Duration
	RememberTTL time.Duration
}

// Authenticator validates credentials and manages sessions.
type Authenticator struct {
	users    UserProvider
	sessions SessionStore
	cfg      Config
	now      func() time.Time
}

// NewAuthenticator returns an Authenticator using users and sessions.
func NewAuthenticator(users UserProvider, sessions SessionStore, cfg Config) *Authenticator {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = DefaultRememberTTL
	}
	return &Authenticator{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// Authenticate checks the credentials. Unknown emails and wrong passwords
// both yield ErrInvalidCredentials.
func (a *Authenticator) Authenticate(ctx context.Context, c Credentials) (*Passport, error) {
	email := strings.TrimSpace(c.Email)
	if email == "" || c.Password.Empty() {
		return nil, ErrInvalidCredentials
	}
	u, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := security.CheckPassword(u.Password, c.Password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("check password: %w", err)
	}
	return &Passport{User: u, RememberMe: c.RememberMe}, nil
}

// OnSuccess opens a session for the passport holder.
func (a *Authenticator) OnSuccess(ctx context.Context, p *Passport) (*model.Session, error) {
	ttl := a.cfg.TTL
	if p.RememberMe {
		ttl = a.cfg.RememberTTL
	}
	token, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	now := a.now()
	sess := &model.Session{
		Token:      token,
		UserID:     p.User.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		RememberMe: p.RememberMe,
	}
	if err := a.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// AuthenticateUser opens a session for u without checking a password.
// Used right after registration.
func (a *Authenticator) AuthenticateUser(ctx context.Context, u *model.User) (*model.Session, error) {
	return a.OnSuccess(ctx, &Passport{User: u})
}

// Resolve maps a session token to its principal. Expired sessions are
// removed and reported as ErrSessionExpired.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	sess, err := a.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Expired(a.now()) {
		_ = a.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	u, err := a.users.GetUser(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			_ = a.sessions.Delete(ctx, token)
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}
	return &Principal{User: u, Session: sess}, nil
}

// Logout ends the session. Unknown tokens are ignored.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.sessions.Delete(ctx, token)
}

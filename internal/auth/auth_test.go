// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/model"
	"github.com/toeirei/blog/internal/security"
	"golang.org/x/crypto/bcrypt"
)

func newTestStore(t *testing.T) db.Store {
	t.Helper()
	s, err := db.NewStoreFromDSN("sqlite", "file:"+t.Name()+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("NewStoreFromDSN failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s db.Store, email, password string, roles ...string) *model.User {
	t.Helper()
	security.SetHashCost(bcrypt.MinCost)
	hash, err := security.HashPassword(security.FromString(password))
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	u := &model.User{Email: email, Username: email, Password: hash, Roles: roles}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	u := createUser(t, s, "john@example.com", "password123")
	a := NewAuthenticator(s, NewDBSessionStore(s), Config{})
	ctx := context.Background()

	cases := []struct {
		name    string
		creds   Credentials
		wantErr error
	}{
		{"valid", Credentials{Email: "john@example.com", Password: security.FromString("password123")}, nil},
		{"surrounding spaces", Credentials{Email: "  john@example.com ", Password: security.FromString("password123")}, nil},
		{"wrong password", Credentials{Email: "john@example.com", Password: security.FromString("nope")}, ErrInvalidCredentials},
		{"unknown email", Credentials{Email: "jane@example.com", Password: security.FromString("password123")}, ErrInvalidCredentials},
		{"empty password", Credentials{Email: "john@example.com"}, ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := a.Authenticate(ctx, tc.creds)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Authenticate error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil && p.User.ID != u.ID {
				t.Fatalf("unexpected passport user %d", p.User.ID)
			}
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	u := createUser(t, s, "john@example.com", "password123")
	a := NewAuthenticator(s, NewDBSessionStore(s), Config{TTL: time.Hour, RememberTTL: 48 * time.Hour})
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return base }

	sess, err := a.OnSuccess(ctx, &Passport{User: u, RememberMe: true})
	if err != nil {
		t.Fatalf("OnSuccess failed: %v", err)
	}
	if len(sess.Token) != 64 || !sess.ExpiresAt.Equal(base.Add(48*time.Hour)) {
		t.Fatalf("unexpected session: %+v", sess)
	}

	p, err := a.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !p.Is(u.ID) || !p.IsGranted(model.RoleUser) || p.Token() != sess.Token {
		t.Fatalf("unexpected principal: %+v", p)
	}

	a.now = func() time.Time { return base.Add(49 * time.Hour) }
	if _, err := a.Resolve(ctx, sess.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// The expired session is gone afterwards.
	if _, err := a.Resolve(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after expiry cleanup, got %v", err)
	}
}

func TestLogoutAndUnknownToken(t *testing.T) {
	s := newTestStore(t)
	u := createUser(t, s, "john@example.com", "password123")
	a := NewAuthenticator(s, NewDBSessionStore(s), Config{})
	ctx := context.Background()

	if _, err := a.Resolve(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for empty token, got %v", err)
	}
	if _, err := a.Resolve(ctx, "missing"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for unknown token, got %v", err)
	}

	sess, err := a.AuthenticateUser(ctx, u)
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	if !sess.ExpiresAt.Equal(sess.CreatedAt.Add(DefaultTTL)) {
		t.Fatalf("expected default ttl, got %v", sess.ExpiresAt.Sub(sess.CreatedAt))
	}
	if err := a.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := a.Resolve(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession after logout, got %v", err)
	}
	if err := a.Logout(ctx, ""); err != nil {
		t.Fatalf("Logout with empty token should be a no-op, got %v", err)
	}
}

func TestResolve_DeletedUser(t *testing.T) {
	s := newTestStore(t)
	u := createUser(t, s, "john@example.com", "password123")
	a := NewAuthenticator(s, NewDBSessionStore(s), Config{})
	ctx := context.Background()

	sess, err := a.AuthenticateUser(ctx, u)
	if err != nil {
		t.Fatalf("AuthenticateUser failed: %v", err)
	}
	if err := s.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := a.Resolve(ctx, sess.Token); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession for deleted user, got %v", err)
	}
}

func TestAccessRules(t *testing.T) {
	user := &Principal{User: &model.User{ID: 1}}
	admin := &Principal{User: &model.User{ID: 2, Roles: []string{model.RoleAdmin}}}

	if err := RequireRole(nil, model.RoleUser); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous RequireRole: %v", err)
	}
	if err := RequireRole(user, model.RoleUser); err != nil {
		t.Fatalf("user RequireRole(ROLE_USER): %v", err)
	}
	if err := RequireRole(user, model.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user RequireRole(ROLE_ADMIN): %v", err)
	}
	if err := RequireSelf(user, 1); err != nil {
		t.Fatalf("RequireSelf(own): %v", err)
	}
	if err := RequireSelf(user, 2); !errors.Is(err, ErrForbidden) {
		t.Fatalf("RequireSelf(other): %v", err)
	}
	if err := RequireSelf(admin, 1); err != nil {
		t.Fatalf("admin RequireSelf(other): %v", err)
	}
	if err := RequireSelf(nil, 1); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous RequireSelf: %v", err)
	}

	ctx := WithPrincipal(context.Background(), user)
	if PrincipalFrom(ctx) != user {
		t.Fatalf("principal not carried by context")
	}
	if PrincipalFrom(context.Background()) != nil {
		t.Fatalf("expected nil principal on bare context")
	}
}

type countingPurger struct {
	calls chan struct{}
}

func (c *countingPurger) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	select {
	case c.calls <- struct{}{}:
	default:
	}
	return 1, nil
}

func TestRunSessionReaper_StopsOnCancel(t *testing.T) {
	p := &countingPurger{calls: make(chan struct{}, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunSessionReaper(ctx, p, 5*time.Millisecond)
		close(done)
	}()

	select {
	case <-p.calls:
	case <-time.After(2 * time.Second):
		t.Fatalf("reaper never ran")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("reaper did not stop after cancel")
	}
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"context"
	"errors"

	"github.com/toeirei/blog/internal/model"
)

var (
	// ErrUnauthenticated is returned by access checks when nobody is logged in.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the principal lacks the required grant.
	ErrForbidden = errors.New("access denied")
)

// Principal is the authenticated user of a request.
type Principal struct {
	User    *model.User
	Session *model.Session
}

// IsGranted reports whether the principal holds role. A nil principal holds
// nothing.
func (p *Principal) IsGranted(role string) bool {
	return p != nil && p.User != nil && p.User.HasRole(role)
}

// Is reports whether the principal is the user with userID.
func (p *Principal) Is(userID int) bool {
	return p != nil && p.User != nil && p.User.ID == userID
}

// Token returns the session token or "".
func (p *Principal) Token() string {
	if p == nil || p.Session == nil {
		return ""
	}
	return p.Session.Token
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or nil.
func PrincipalFrom(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// RequireRole fails with ErrUnauthenticated for anonymous requests and with
// ErrForbidden when role is missing.
func RequireRole(p *Principal, role string) error {
	if p == nil || p.User == nil {
		return ErrUnauthenticated
	}
	if !p.IsGranted(role) {
		return ErrForbidden
	}
	return nil
}

// RequireSelf allows ROLE_USER principals acting on their own account, and
// administrators acting on any account.
func RequireSelf(p *Principal, userID int) error {
	if err := RequireRole(p, model.RoleUser); err != nil {
		return err
	}
	if p.Is(userID) || p.IsGranted(model.RoleAdmin) {
		return nil
	}
	return ErrForbidden
}

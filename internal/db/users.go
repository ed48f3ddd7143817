// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeirei/blog/internal/model"
	"github.com/uptrace/bun"
)

func orderByID(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("?TableAlias.id ASC")
}

// CreateUser inserts u and sets its ID. A taken email yields ErrDuplicate.
func (s *BunStore) CreateUser(ctx context.Context, u *model.User) error {
	m := userModelFrom(u)
	m.Email = strings.TrimSpace(m.Email)
	if _, err := s.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("create user: %w", MapDBError(err))
	}
	u.ID = m.ID
	u.Email = m.Email
	u.Roles = m.Roles
	dbLogf("db: created user %d (%s)", u.ID, u.Email)
	return nil
}

// GetUser loads a user and its posts.
func (s *BunStore) GetUser(ctx context.Context, id int) (*model.User, error) {
	var m UserModel
	err := s.bun.NewSelect().Model(&m).
		Relation("Posts", orderByID).
		Where("u.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	u := userModelToModel(m)
	return &u, nil
}

// GetUserByEmail loads a user by its login identifier.
func (s *BunStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var m UserModel
	err := s.bun.NewSelect().Model(&m).
		Where("u.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	u := userModelToModel(m)
	return &u, nil
}

// ListUsers returns every user with its posts.
func (s *BunStore) ListUsers(ctx context.Context) ([]model.User, error) {
	var ms []UserModel
	err := s.bun.NewSelect().Model(&ms).
		Relation("Posts", orderByID).
		OrderExpr("u.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	out := make([]model.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, userModelToModel(m))
	}
	return out, nil
}

// UpdateUser writes every column of u.
func (s *BunStore) UpdateUser(ctx context.Context, u *model.User) error {
	m := userModelFrom(u)
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := rowExists(ctx, tx, "users", m.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		_, err = tx.NewUpdate().Model(m).
			Column("email", "roles", "password", "username").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update user %d: %w", m.ID, MapDBError(err))
		}
		return nil
	})
}

// DeleteUser removes the user together with its posts and sessions.
func (s *BunStore) DeleteUser(ctx context.Context, id int) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*SessionModel)(nil)).Where("user_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete sessions of user %d: %w", id, err)
		}
		if _, err := tx.NewDelete().Model((*PostModel)(nil)).Where("author_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete posts of user %d: %w", id, err)
		}
		res, err := tx.NewDelete().Model((*UserModel)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete user %d: %w", id, err)
		}
		return affectedOrNotFound(res)
	})
}

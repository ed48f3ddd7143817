// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/toeirei/blog/internal/model"
)

// SaveSession stores a new session row.
func (s *BunStore) SaveSession(ctx context.Context, sess *model.Session) error {
	m := &SessionModel{
		Token:      sess.Token,
		UserID:     sess.UserID,
		CreatedAt:  sess.CreatedAt.UTC(),
		ExpiresAt:  sess.ExpiresAt.UTC(),
		RememberMe: sess.RememberMe,
	}
	if _, err := s.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", MapDBError(err))
	}
	return nil
}

// GetSession loads the session for token. Expired sessions are returned as
// well; callers decide what to do with them.
func (s *BunStore) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var m SessionModel
	if err := s.bun.NewSelect().Model(&m).Where("s.token = ?", token).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	sess := sessionModelToModel(m)
	return &sess, nil
}

// DeleteSession removes the session. Unknown tokens are not an error.
func (s *BunStore) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.bun.NewDelete().Model((*SessionModel)(nil)).Where("token = ?", token).Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions purges sessions that expired at or before now and
// returns how many were removed.
func (s *BunStore) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.bun.NewDelete().Model((*SessionModel)(nil)).Where("expires_at <= ?", now.UTC()).Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

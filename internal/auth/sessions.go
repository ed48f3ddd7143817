// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/gomodule/redigo/redis"
	"github.com/toeirei/blog/internal/db"
	"github.com/toeirei/blog/internal/logging"
	"github.com/toeirei/blog/internal/model"
)

// SessionStore persists sessions. Get returns ErrNoSession for unknown tokens.
type SessionStore interface {
	Save(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, token string) (*model.Session, error)
	Delete(ctx context.Context, token string) error
}

// DBSessionStore keeps sessions in the sessions table.
type DBSessionStore struct {
	store db.Store
}

// NewDBSessionStore returns a SessionStore backed by store.
func NewDBSessionStore(store db.Store) *DBSessionStore {
	return &DBSessionStore{store: store}
}

func (s *DBSessionStore) Save(ctx context.Context, sess *model.Session) error {
	return s.store.SaveSession(ctx, sess)
}

func (s *DBSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	sess, err := s.store.GetSession(ctx, token)
	if errors.Is(err, db.ErrNotFound) {
		return nil, ErrNoSession
	}
	return sess, err
}

func (s *DBSessionStore) Delete(ctx context.Context, token string) error {
	return s.store.DeleteSession(ctx, token)
}

// RedisSessionStore keeps sessions as JSON values that Redis expires on its
// own.
type RedisSessionStore struct {
	pool   *redis.Pool
	prefix string
}

// NewRedisPool dials address lazily with a bounded pool.
func NewRedisPool(address string, maxIdle, maxActive int) *redis.Pool {
	return &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", address)
		},
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		Wait:        true,
		IdleTimeout: 5 * time.Minute,
	}
}

// NewRedisSessionStore returns a SessionStore using pool. Keys are
// "<prefix>session:<token>".
func NewRedisSessionStore(pool *redis.Pool, prefix string) *RedisSessionStore {
	return &RedisSessionStore{pool: pool, prefix: prefix}
}

func (s *RedisSessionStore) key(token string) string {
	return s.prefix + "session:" + token
}

type redisSession struct {
	UserID     int       `json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
}

func (s *RedisSessionStore) Save(ctx context.Context, sess *model.Session) error {
	ttl := int64(time.Until(sess.ExpiresAt) / time.Second)
	if ttl <= 0 {
		return ErrSessionExpired
	}
	raw, err := json.Marshal(redisSession{
		UserID:     sess.UserID,
		CreatedAt:  sess.CreatedAt,
		ExpiresAt:  sess.ExpiresAt,
		RememberMe: sess.RememberMe,
	})
	if err != nil {
		return err
	}
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if _, err := conn.Do("SET", s.key(sess.Token), raw, "EX", ttl); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	defer func() { _ = conn.Close() }()
	raw, err := redis.Bytes(conn.Do("GET", s.key(token)))
	if err != nil {
		if err == redis.ErrNil {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var rs redisSession
	if err := json.Unmarshal(raw, &rs); err != nil {
		logging.Warnf("auth: dropping unreadable session %s...: %v", token[:min(8, len(token))], err)
		_, _ = conn.Do("DEL", s.key(token))
		return nil, ErrNoSession
	}
	return &model.Session{
		Token:      token,
		UserID:     rs.UserID,
		CreatedAt:  rs.CreatedAt,
		ExpiresAt:  rs.ExpiresAt,
		RememberMe: rs.RememberMe,
	}, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, token string) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("redis connection: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if _, err := conn.Do("DEL", s.key(token)); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// ExpiredSessionPurger removes sessions past their expiry. db.Store satisfies it.
type ExpiredSessionPurger interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// RunSessionReaper purges expired sessions every interval until ctx is done.
func RunSessionReaper(ctx context.Context, p ExpiredSessionPurger, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.DeleteExpiredSessions(ctx, time.Now())
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logging.Warnf("auth: session reaper: %v", err)
				continue
			}
			if n > 0 {
				logging.Debugf("auth: reaped %d expired sessions", n)
			}
		}
	}
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/blog/internal/model"
	"github.com/uptrace/bun"
)

// checkPostReferences returns ErrInvalidReference when the category or the
// author of p does not exist.
func checkPostReferences(ctx context.Context, idb bun.IDB, p *model.Post) error {
	ok, err := rowExists(ctx, idb, "categories", p.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("category %d: %w", p.CategoryID, ErrInvalidReference)
	}
	ok, err = rowExists(ctx, idb, "users", p.AuthorID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("author %d: %w", p.AuthorID, ErrInvalidReference)
	}
	return nil
}

// CreatePost inserts p, filling the slug from the title when empty and
// setting both timestamps.
func (s *BunStore) CreatePost(ctx context.Context, p *model.Post) error {
	if p.Slug == "" {
		p.Slug = model.Slugify(p.Title)
	}
	p.Touch(clock(), true)
	m := postModelFrom(p)
	err := s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := checkPostReferences(ctx, tx, p); err != nil {
			return err
		}
		if _, err := tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("create post: %w", MapDBError(err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.ID = m.ID
	return nil
}

func (s *BunStore) selectPosts(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Relation("Category").Relation("Author")
}

// GetPost loads a post with its category and author.
func (s *BunStore) GetPost(ctx context.Context, id int) (*model.Post, error) {
	var m PostModel
	err := s.selectPosts(s.bun.NewSelect().Model(&m)).
		Where("p.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	p := postModelToModel(m)
	return &p, nil
}

// GetPostBySlug loads a post by its unique slug.
func (s *BunStore) GetPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var m PostModel
	err := s.selectPosts(s.bun.NewSelect().Model(&m)).
		Where("p.slug = ?", slug).
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	p := postModelToModel(m)
	return &p, nil
}

// ListPosts returns the posts matching f ordered by id.
func (s *BunStore) ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error) {
	var ms []PostModel
	q := s.selectPosts(s.bun.NewSelect().Model(&ms))
	if f.CategoryID != 0 {
		q = q.Where("p.category_id = ?", f.CategoryID)
	}
	if f.AuthorID != 0 {
		q = q.Where("p.author_id = ?", f.AuthorID)
	}
	for _, tok := range TokenizeSearchQuery(f.Query) {
		pattern := likePattern(tok)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where(s.likeExpr("p.title"), pattern).
				WhereOr(s.likeExpr("p.content"), pattern)
		})
	}
	if err := q.OrderExpr("p.id ASC").Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	out := make([]model.Post, 0, len(ms))
	for _, m := range ms {
		out = append(out, postModelToModel(m))
	}
	return out, nil
}

// UpdatePost writes every writable column of p and refreshes UpdatedAt.
func (s *BunStore) UpdatePost(ctx context.Context, p *model.Post) error {
	if p.Slug == "" {
		p.Slug = model.Slugify(p.Title)
	}
	p.Touch(clock(), false)
	m := postModelFrom(p)
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := rowExists(ctx, tx, "posts", p.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if err := checkPostReferences(ctx, tx, p); err != nil {
			return err
		}
		_, err = tx.NewUpdate().Model(m).
			Column("title", "content", "slug", "updated_at", "category_id", "author_id").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update post %d: %w", p.ID, MapDBError(err))
		}
		return nil
	})
}

// DeletePost removes a single post.
func (s *BunStore) DeletePost(ctx context.Context, id int) error {
	res, err := s.bun.NewDelete().Model((*PostModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return affectedOrNotFound(res)
}

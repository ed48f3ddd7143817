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

// CreateCategory inserts c and sets its ID.
func (s *BunStore) CreateCategory(ctx context.Context, c *model.Category) error {
	m := &CategoryModel{ID: c.ID, Name: c.Name}
	if _, err := s.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("create category: %w", MapDBError(err))
	}
	c.ID = m.ID
	return nil
}

// GetCategory loads a category and its posts.
func (s *BunStore) GetCategory(ctx context.Context, id int) (*model.Category, error) {
	var m CategoryModel
	err := s.bun.NewSelect().Model(&m).
		Relation("Posts", orderByID).
		Where("c.id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	c := categoryModelToModel(m)
	return &c, nil
}

// ListCategories returns every category with its posts.
func (s *BunStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	var ms []CategoryModel
	err := s.bun.NewSelect().Model(&ms).
		Relation("Posts", orderByID).
		OrderExpr("c.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, MapDBError(err)
	}
	out := make([]model.Category, 0, len(ms))
	for _, m := range ms {
		out = append(out, categoryModelToModel(m))
	}
	return out, nil
}

// UpdateCategory renames the category.
func (s *BunStore) UpdateCategory(ctx context.Context, c *model.Category) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		ok, err := rowExists(ctx, tx, "categories", c.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		_, err = tx.NewUpdate().Model(&CategoryModel{ID: c.ID, Name: c.Name}).
			Column("name").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update category %d: %w", c.ID, MapDBError(err))
		}
		return nil
	})
}

// DeleteCategory removes the category and every post filed under it.
func (s *BunStore) DeleteCategory(ctx context.Context, id int) error {
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*PostModel)(nil)).Where("category_id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete posts of category %d: %w", id, err)
		}
		res, err := tx.NewDelete().Model((*CategoryModel)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		return affectedOrNotFound(res)
	})
}

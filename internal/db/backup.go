// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toeirei/blog/internal/model"
	"github.com/uptrace/bun"
)

// Export dumps users, categories and posts as flat rows ordered by id.
// Sessions are not exported.
func (s *BunStore) Export(ctx context.Context) (*model.BackupData, error) {
	data := &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		Users:         []model.BackupUser{},
		Categories:    []model.BackupCategory{},
		Posts:         []model.BackupPost{},
	}

	var users []UserModel
	if err := s.bun.NewSelect().Model(&users).OrderExpr("u.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	for _, u := range users {
		data.Users = append(data.Users, model.BackupUser{
			ID:           u.ID,
			Email:        u.Email,
			Roles:        rolesOrEmpty(u.Roles),
			PasswordHash: u.Password,
			Username:     u.Username,
		})
	}

	var categories []CategoryModel
	if err := s.bun.NewSelect().Model(&categories).OrderExpr("c.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("export categories: %w", err)
	}
	for _, c := range categories {
		data.Categories = append(data.Categories, model.BackupCategory{ID: c.ID, Name: c.Name})
	}

	var posts []PostModel
	if err := s.bun.NewSelect().Model(&posts).OrderExpr("p.id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("export posts: %w", err)
	}
	for _, p := range posts {
		data.Posts = append(data.Posts, model.BackupPost{
			ID:         p.ID,
			Title:      p.Title,
			Content:    p.Content,
			Slug:       p.Slug,
			CreatedAt:  p.CreatedAt,
			UpdatedAt:  p.UpdatedAt,
			CategoryID: p.CategoryID,
			AuthorID:   p.AuthorID,
		})
	}
	return data, nil
}

// Import loads a backup in a single transaction. With full set, all existing
// rows (sessions included) are wiped first and ids are kept.
//
// Otherwise only missing rows are inserted. A user whose email already exists
// is reused, as is a category with the same id and name, and a post whose slug
// already exists is skipped. Rows whose id is taken by a different row get a
// fresh id, and post references are remapped to the ids used in the target.
func (s *BunStore) Import(ctx context.Context, data *model.BackupData, full bool) error {
	if data == nil {
		return fmt.Errorf("import: no data")
	}
	if data.SchemaVersion > model.BackupSchemaVersion {
		return fmt.Errorf("import: unsupported backup schema version %d", data.SchemaVersion)
	}
	return s.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if full {
			for _, table := range []string{"sessions", "posts", "categories", "users"} {
				if _, err := ExecRaw(ctx, tx, "DELETE FROM ?", bun.Ident(table)); err != nil {
					return fmt.Errorf("import: wipe %s: %w", table, err)
				}
			}
		}
		imp := &importer{store: s, tx: tx, full: full, users: map[int]int{}, categories: map[int]int{}}
		if err := imp.importUsers(ctx, data.Users); err != nil {
			return err
		}
		if err := imp.importCategories(ctx, data.Categories); err != nil {
			return err
		}
		if err := imp.importPosts(ctx, data.Posts); err != nil {
			return err
		}
		for _, table := range []string{"users", "categories", "posts"} {
			if err := s.resetSequence(ctx, tx, table); err != nil {
				return err
			}
		}
		dbLogf("db: imported %d users, %d categories, %d posts (full=%v, renumbered=%d)",
			imp.insertedUsers, imp.insertedCategories, imp.insertedPosts, full, imp.renumbered)
		return nil
	})
}

// importer carries the backup id to target id mappings of one Import.
type importer struct {
	store *BunStore
	tx    bun.Tx
	full  bool

	users      map[int]int
	categories map[int]int

	insertedUsers      int
	insertedCategories int
	insertedPosts      int
	renumbered         int
}

func (imp *importer) importUsers(ctx context.Context, rows []model.BackupUser) error {
	var fresh []*UserModel
	var freshFrom []int
	for _, u := range rows {
		m := &UserModel{ID: u.ID, Email: u.Email, Roles: rolesOrEmpty(u.Roles), Password: u.PasswordHash, Username: u.Username}
		if !imp.full {
			var existing UserModel
			err := imp.tx.NewSelect().Model(&existing).Column("id").Where("email = ?", u.Email).Limit(1).Scan(ctx)
			switch {
			case err == nil:
				imp.users[u.ID] = existing.ID
				continue
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("import user %d: %w", u.ID, err)
			}
			taken, err := rowExists(ctx, imp.tx, "users", u.ID)
			if err != nil {
				return err
			}
			if taken {
				m.ID = 0
				fresh = append(fresh, m)
				freshFrom = append(freshFrom, u.ID)
				continue
			}
		}
		if _, err := imp.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("import user %d: %w", u.ID, MapDBError(err))
		}
		imp.users[u.ID] = m.ID
		imp.insertedUsers++
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := imp.store.resetSequence(ctx, imp.tx, "users"); err != nil {
		return err
	}
	for i, m := range fresh {
		if _, err := imp.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("import user %d: %w", freshFrom[i], MapDBError(err))
		}
		imp.users[freshFrom[i]] = m.ID
		imp.insertedUsers++
		imp.renumbered++
	}
	return nil
}

func (imp *importer) importCategories(ctx context.Context, rows []model.BackupCategory) error {
	var fresh []*CategoryModel
	var freshFrom []int
	for _, c := range rows {
		m := &CategoryModel{ID: c.ID, Name: c.Name}
		if !imp.full {
			var existing CategoryModel
			err := imp.tx.NewSelect().Model(&existing).Where("c.id = ?", c.ID).Scan(ctx)
			switch {
			case err == nil && existing.Name == c.Name:
				imp.categories[c.ID] = existing.ID
				continue
			case err == nil:
				m.ID = 0
				fresh = append(fresh, m)
				freshFrom = append(freshFrom, c.ID)
				continue
			case !errors.Is(err, sql.ErrNoRows):
				return fmt.Errorf("import category %d: %w", c.ID, err)
			}
		}
		if _, err := imp.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("import category %d: %w", c.ID, MapDBError(err))
		}
		imp.categories[c.ID] = m.ID
		imp.insertedCategories++
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := imp.store.resetSequence(ctx, imp.tx, "categories"); err != nil {
		return err
	}
	for i, m := range fresh {
		if _, err := imp.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("import category %d: %w", freshFrom[i], MapDBError(err))
		}
		imp.categories[freshFrom[i]] = m.ID
		imp.insertedCategories++
		imp.renumbered++
	}
	return nil
}

func (imp *importer) importPosts(ctx context.Context, rows []model.BackupPost) error {
	var fresh []*PostModel
	var freshFrom []int
	for _, p := range rows {
		m := &PostModel{
			ID:         p.ID,
			Title:      p.Title,
			Content:    p.Content,
			Slug:       p.Slug,
			CreatedAt:  p.CreatedAt.UTC(),
			UpdatedAt:  p.UpdatedAt.UTC(),
			CategoryID: remap(imp.categories, p.CategoryID),
			AuthorID:   remap(imp.users, p.AuthorID),
		}
		if !imp.full {
			dup, err := imp.tx.NewSelect().Model((*PostModel)(nil)).Where("slug = ?", p.Slug).Exists(ctx)
			if err != nil {
				return err
			}
			if dup {
				continue
			}
			taken, err := rowExists(ctx, imp.tx, "posts", p.ID)
			if err != nil {
				return err
			}
			if taken {
				m.ID = 0
			}
		}
		post := model.Post{ID: p.ID, CategoryID: m.CategoryID, AuthorID: m.AuthorID}
		if err := checkPostReferences(ctx, imp.tx, &post); err != nil {
			return fmt.Errorf("import post %d: %w", p.ID, err)
		}
		if m.ID == 0 {
			fresh = append(fresh, m)
			freshFrom = append(freshFrom, p.ID)
			continue
		}
		if _, err := imp.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("import post %d: %w", p.ID, MapDBError(err))
		}
		imp.insertedPosts++
	}
	if len(fresh) == 0 {
		return nil
	}
	if err := imp.store.resetSequence(ctx, imp.tx, "posts"); err != nil {
		return err
	}
	for i, m := range fresh {
		if _, err := imp.tx.NewInsert().Model(m).Exec(ctx); err != nil {
			return fmt.Errorf("import post %d: %w", freshFrom[i], MapDBError(err))
		}
		imp.insertedPosts++
		imp.renumbered++
	}
	return nil
}

// remap returns the target id recorded for a backup id, or id itself.
func remap(ids map[int]int, id int) int {
	if to, ok := ids[id]; ok {
		return to
	}
	return id
}

// resetSequence moves a postgres serial sequence past the largest id, since
// explicit ids bypass it. Other engines track this themselves.
func (s *BunStore) resetSequence(ctx context.Context, tx bun.Tx, table string) error {
	if s.dialect != "postgres" {
		return nil
	}
	q := "SELECT setval(pg_get_serial_sequence(?, 'id'), COALESCE((SELECT MAX(id) FROM ?), 0) + 1, false)"
	if _, err := ExecRaw(ctx, tx, q, table, bun.Ident(table)); err != nil {
		return fmt.Errorf("import: reset sequence of %s: %w", table, err)
	}
	return nil
}

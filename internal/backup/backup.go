// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package backup writes and reads zstd-compressed JSON snapshots of the
// blog database.
package backup

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/toeirei/blog/internal/model"
)

// Store is the part of db.Store used by backups.
type Store interface {
	Export(ctx context.Context) (*model.BackupData, error)
	Import(ctx context.Context, data *model.BackupData, full bool) error
}

// Write writes compressed JSON backup data to w.
func Write(w io.Writer, data *model.BackupData) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush backup: %w", err)
	}
	return nil
}

// Read decodes a backup written by Write.
func Read(r io.Reader) (*model.BackupData, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()
	var data model.BackupData
	if err := json.NewDecoder(zr).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode backup: %w", err)
	}
	return &data, nil
}

// Backup exports st and writes it to w.
func Backup(ctx context.Context, st Store, w io.Writer) (*model.BackupData, error) {
	data, err := st.Export(ctx)
	if err != nil {
		return nil, fmt.Errorf("export backup: %w", err)
	}
	if err := Write(w, data); err != nil {
		return nil, err
	}
	return data, nil
}

// Restore reads a backup from r and imports it into st. With full set the
// existing data is replaced; otherwise only missing rows are added.
func Restore(ctx context.Context, r io.Reader, st Store, full bool) (*model.BackupData, error) {
	data, err := Read(r)
	if err != nil {
		return nil, err
	}
	if err := st.Import(ctx, data, full); err != nil {
		return nil, fmt.Errorf("import backup: %w", err)
	}
	return data, nil
}

// Migrate copies every row of src into dst, replacing what dst holds.
func Migrate(ctx context.Context, src, dst Store) error {
	data, err := src.Export(ctx)
	if err != nil {
		return fmt.Errorf("export backup: %w", err)
	}
	if err := dst.Import(ctx, data, true); err != nil {
		return fmt.Errorf("import to target: %w", err)
	}
	return nil
}

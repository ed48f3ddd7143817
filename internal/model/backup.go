// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "time"

// BackupSchemaVersion is written into every backup.
const BackupSchemaVersion = 1

// BackupData is a container for all data exported in a backup.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Users      []BackupUser     `json:"users"`
	Categories []BackupCategory `json:"categories"`
	Posts      []BackupPost     `json:"posts"`
}

// BackupUser is a flat user row. PasswordHash is the stored bcrypt hash.
type BackupUser struct {
	ID           int      `json:"id"`
	Email        string   `json:"email"`
	Roles        []string `json:"roles"`
	PasswordHash string   `json:"password_hash"`
	Username     string   `json:"username"`
}

// BackupCategory is a flat category row.
type BackupCategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// BackupPost is a flat post row.
type BackupPost struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Slug       string    `json:"slug"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	CategoryID int       `json:"category_id"`
	AuthorID   int       `json:"author_id"`
}

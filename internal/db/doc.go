// Package db contains the data-access layer of the blog.
//
// A single BunStore implements Store for SQLite, PostgreSQL and MySQL; the
// dialect is picked from the database type passed to NewStoreFromDSN. Schema
// changes live in embedded SQL files under migrations/<dialect>/ and are
// applied in lexical order by RunMigrations.
//
// Deleting a user or a category also deletes the posts that belong to it.
// Driver errors are normalized with MapDBError so callers can match
// ErrNotFound, ErrDuplicate and ErrInvalidReference with errors.Is.
//
// Testing notes
//   - Prefer WithTestStore, which opens a named in-memory sqlite database
//     per test and runs all migrations.
package db

package repository

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS skills (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS cv (
		id      BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cv_keywords (
		cv_id  BIGINT PRIMARY KEY,
		skills TEXT[] NOT NULL DEFAULT '{}'
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS skills (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS cv (
		id      INTEGER PRIMARY KEY,
		user_id INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cv_keywords (
		cv_id  INTEGER PRIMARY KEY,
		skills TEXT NOT NULL DEFAULT '[]'
	)`,
}

// Migrate creates the skills, cv and cv_keywords tables when missing.
// The cv table normally belongs to the upload service; it is created here for
// local and test databases only.
func (db *DB) Migrate(ctx context.Context) error {
	start := time.Now()
	stmts := postgresSchema
	if db.dialect == dialect.SQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.exec(ctx, stmt, []any{}); err != nil {
			db.logger.Error("repository.migrate.failed", "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	db.logger.Info("repository.migrate.ok", "dialect", db.dialect, "statements", len(stmts),
		"elapsed_ms", time.Since(start).Milliseconds())
	return nil
}

// Package db opens the embedded sqlite database backing the credential
// store.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db}, nil
}

// RunMigrations creates or updates the schema. Safe to run on every start.
func (d *DB) RunMigrations() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS connections (
			key TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			provider TEXT NOT NULL,
			access_token TEXT,
			refresh_token TEXT,
			token_type TEXT,
			expires_at_ms INTEGER,
			updated_at_ms INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_connections_uid ON connections(uid);
	`
	if _, err := d.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create connections table: %w", err)
	}
	return nil
}

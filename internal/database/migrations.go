package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createSessionsTable,
		createSessionsExpiryIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Token and profile name live in one row so they are always written and cleared together
const createSessionsTable = `
CREATE TABLE IF NOT EXISTS sessions (
    session_id UUID PRIMARY KEY,
    access_token TEXT NOT NULL,
    profile_name VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMPTZ
);`

const createSessionsExpiryIndex = `
CREATE INDEX IF NOT EXISTS sessions_expires_at_idx
ON sessions (expires_at);`

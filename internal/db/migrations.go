package db

import (
	"context"
	"fmt"
)

// migrations are applied in order; user_version records how many ran.
var migrations = []string{
	`
	CREATE TABLE IF NOT EXISTS usage_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		email TEXT NOT NULL,
		tier TEXT NOT NULL,
		today_calls INTEGER DEFAULT 0,
		quota_used INTEGER DEFAULT 0,
		quota_total INTEGER DEFAULT 0,
		active_models INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_usage_snapshots_email_time ON usage_snapshots(email, timestamp);
	`,
	`
	CREATE TABLE IF NOT EXISTS key_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		email TEXT NOT NULL,
		key_id TEXT NOT NULL,
		masked TEXT NOT NULL,
		model_id TEXT,
		event_type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_key_events_email_time ON key_events(email, timestamp);
	`,
}

// SchemaVersion returns the number of applied migrations.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	if err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return v, nil
}

func (db *DB) migrate() error {
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for i := current; i < len(migrations); i++ {
		tx, err := db.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(context.Background(), migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not accept bound parameters.
		if _, err := tx.ExecContext(context.Background(), fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", i+1, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", i+1, err)
		}
	}

	return nil
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// InsertUsageSnapshot stores one resolved analytics result.
func (db *DB) InsertUsageSnapshot(s *models.UsageSnapshot) error {
	query := `
		INSERT INTO usage_snapshots (
			timestamp, email, tier, today_calls, quota_used, quota_total, active_models
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := s.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(timeFormat),
		s.Email,
		s.Tier,
		s.TodayCalls,
		s.QuotaUsed,
		s.QuotaTotal,
		s.ActiveModels,
	)
	if err != nil {
		return fmt.Errorf("failed to insert usage snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		s.ID = id
	}

	return nil
}

// GetUsageSnapshots returns snapshots for email at or after since, oldest
// first. A zero since returns everything.
func (db *DB) GetUsageSnapshots(email string, since time.Time) ([]models.UsageSnapshot, error) {
	query := `
		SELECT id, timestamp, email, tier, today_calls, quota_used, quota_total, active_models
		FROM usage_snapshots
		WHERE email = ? AND timestamp >= ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := db.QueryContext(context.Background(), query, email, since.UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snapshots []models.UsageSnapshot
	for rows.Next() {
		var s models.UsageSnapshot
		var ts string
		if err := rows.Scan(
			&s.ID,
			&ts,
			&s.Email,
			&s.Tier,
			&s.TodayCalls,
			&s.QuotaUsed,
			&s.QuotaTotal,
			&s.ActiveModels,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage snapshot: %w", err)
		}
		s.Timestamp = parseStoredTime(ts)
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// LatestUsageSnapshot returns the newest snapshot for email, or nil.
func (db *DB) LatestUsageSnapshot(email string) (*models.UsageSnapshot, error) {
	query := `
		SELECT id, timestamp, email, tier, today_calls, quota_used, quota_total, active_models
		FROM usage_snapshots
		WHERE email = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT 1
	`

	var s models.UsageSnapshot
	var ts string
	err := db.QueryRowContext(context.Background(), query, email).Scan(
		&s.ID, &ts, &s.Email, &s.Tier, &s.TodayCalls, &s.QuotaUsed, &s.QuotaTotal, &s.ActiveModels,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	s.Timestamp = parseStoredTime(ts)
	return &s, nil
}

// PruneUsageSnapshots deletes snapshots older than before.
func (db *DB) PruneUsageSnapshots(before time.Time) (int64, error) {
	result, err := db.ExecContext(context.Background(),
		"DELETE FROM usage_snapshots WHERE timestamp < ?",
		before.UTC().Format(timeFormat),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage snapshots: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		logger.Debug("pruned usage snapshots", "count", n)
	}
	return n, nil
}

// InsertKeyEvent records a key lifecycle transition.
func (db *DB) InsertKeyEvent(e *models.KeyEvent) error {
	query := `
		INSERT INTO key_events (
			timestamp, email, key_id, masked, model_id, event_type
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	timestamp := e.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(timeFormat),
		e.Email,
		e.KeyID,
		e.Masked,
		nullString(e.ModelID),
		string(e.Type),
	)
	if err != nil {
		return fmt.Errorf("failed to insert key event: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		e.ID = id
	}

	return nil
}

// GetKeyEvents returns the newest key events for email.
func (db *DB) GetKeyEvents(email string, limit int) ([]models.KeyEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}

	query := `
		SELECT id, timestamp, email, key_id, masked, model_id, event_type
		FROM key_events
		WHERE email = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query key events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.KeyEvent
	for rows.Next() {
		var e models.KeyEvent
		var ts, eventType string
		var modelID sql.NullString
		if err := rows.Scan(&e.ID, &ts, &e.Email, &e.KeyID, &e.Masked, &modelID, &eventType); err != nil {
			return nil, fmt.Errorf("failed to scan key event: %w", err)
		}
		e.Timestamp = parseStoredTime(ts)
		e.ModelID = modelID.String
		e.Type = models.KeyEventType(eventType)
		events = append(events, e)
	}

	return events, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func parseStoredTime(s string) time.Time {
	t, err := time.ParseInLocation(timeFormat, s, time.UTC)
	if err != nil {
		if parsed, ok := models.ParseTime(s); ok {
			return parsed
		}
		logger.Warn("unparseable stored timestamp", "value", s)
	}
	return t
}

// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange24Hours shows data from the last 24 hours.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days shows data from the last 7 days.
	TimeRange7Days
	// TimeRange30Days shows data from the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime shows all available historical data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "24 Hours"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Since returns the lower bound of the range relative to now. The zero time
// means unbounded.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// UsageSnapshot is a resolved analytics result persisted locally.
type UsageSnapshot struct {
	Timestamp    time.Time
	Email        string
	Tier         string
	ID           int64
	TodayCalls   int
	QuotaUsed    int
	QuotaTotal   int
	ActiveModels int
}

// Percent returns the quota percentage of the snapshot.
func (s UsageSnapshot) Percent() int {
	return QuotaPercent(s.QuotaUsed, s.QuotaTotal)
}

// KeyEventType is the kind of key lifecycle transition recorded locally.
type KeyEventType string

const (
	// KeyEventCreated records a new key.
	KeyEventCreated KeyEventType = "created"
	// KeyEventRevoked records an Active to Inactive transition.
	KeyEventRevoked KeyEventType = "revoked"
)

// KeyEvent is a locally recorded key transition. Only the masked secret is
// ever stored.
type KeyEvent struct {
	Timestamp time.Time
	Email     string
	KeyID     string
	Masked    string
	ModelID   string
	Type      KeyEventType
	ID        int64
}

package models

import (
	"encoding/json"
	"math"
	"time"
)

// DefaultQuotaTotal is the monthly call allowance shown when the server does
// not report one.
const DefaultQuotaTotal = 50000

// UnknownModelName labels ranking entries with no model name.
const UnknownModelName = "Unknown Model"

// WeekdayLabels are the bucket keys, indexed by time.Weekday.
var WeekdayLabels = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// UsageLogEntry is a single server-issued usage event.
type UsageLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	ModelID   string    `json:"modelId,omitempty"`
	// Count is the unit count reported by the server. Bucketing counts
	// entries, not units.
	Count int `json:"count,omitempty"`
}

// UnmarshalJSON tolerates alternate field names and timestamp formats.
func (e *UsageLogEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Timestamp string          `json:"timestamp"`
		CreatedAt string          `json:"createdAt"`
		ModelID   string          `json:"modelId"`
		Model     json.RawMessage `json:"model"`
		Count     int             `json:"count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ts, _ := ParseTime(firstNonEmpty(raw.Timestamp, raw.CreatedAt))
	e.Timestamp = ts
	e.ModelID = raw.ModelID
	if e.ModelID == "" && len(raw.Model) > 0 {
		e.ModelID = modelRef(raw.Model)
	}
	e.Count = max(raw.Count, 0)
	return nil
}

// modelRef extracts a model identifier from either a string or a populated
// model document.
func modelRef(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var doc struct {
		ID      string `json:"_id"`
		AltID   string `json:"id"`
		Name    string `json:"name"`
		Display string `json:"modelName"`
	}
	if err := json.Unmarshal(raw, &doc); err == nil {
		return firstNonEmpty(doc.Name, doc.Display, doc.AltID, doc.ID)
	}
	return ""
}

// UsageStats are the summary counters shown above the charts.
type UsageStats struct {
	TodayCalls   int `json:"todayCalls"`
	QuotaUsed    int `json:"quotaUsed"`
	QuotaTotal   int `json:"quotaTotal"`
	ActiveModels int `json:"activeModels"`
}

// Percent returns the quota usage percentage.
func (s UsageStats) Percent() int {
	return QuotaPercent(s.QuotaUsed, s.QuotaTotal)
}

// QuotaPercent returns round(used/total*100), or 0 when total is zero.
// Values over 100 are returned as-is.
func QuotaPercent(used, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(used) / float64(total) * 100))
}

// DailyBucket is one weekday slot in the trailing seven day window.
type DailyBucket struct {
	Day   string `json:"day"`
	Calls int    `json:"calls"`
}

// ModelUsageEntry is one row of the model usage ranking.
type ModelUsageEntry struct {
	Name  string `json:"modelName"`
	Count int    `json:"count"`
}

// DeveloperStats is the pre-aggregated statistics payload.
type DeveloperStats struct {
	TodayCalls   int               `json:"todayCalls"`
	MonthlyUsage int               `json:"monthlyUsage"`
	ActiveModels int               `json:"activeModels"`
	ModelUsage   []json.RawMessage `json:"modelUsage"`
}

// UnmarshalJSON leaves ModelUsage nil when the field is missing, null or not
// an array. An empty array stays empty.
func (s *DeveloperStats) UnmarshalJSON(data []byte) error {
	var raw struct {
		TodayCalls   int             `json:"todayCalls"`
		MonthlyUsage int             `json:"monthlyUsage"`
		ActiveModels int             `json:"activeModels"`
		ModelUsage   json.RawMessage `json:"modelUsage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = DeveloperStats{
		TodayCalls:   raw.TodayCalls,
		MonthlyUsage: raw.MonthlyUsage,
		ActiveModels: raw.ActiveModels,
	}
	var list []json.RawMessage
	if len(raw.ModelUsage) > 0 && json.Unmarshal(raw.ModelUsage, &list) == nil {
		s.ModelUsage = list
	}
	return nil
}

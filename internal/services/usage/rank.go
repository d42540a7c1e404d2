package usage

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// RankModels normalizes pre-ranked entries: blank names become
// "Unknown Model", negative counts become 0, and only the first five are kept.
func RankModels(entries []models.ModelUsageEntry) []models.ModelUsageEntry {
	out := lo.Map(entries, func(e models.ModelUsageEntry, _ int) models.ModelUsageEntry {
		if e.Name == "" {
			e.Name = models.UnknownModelName
		}
		e.Count = max(e.Count, 0)
		return e
	})
	if len(out) > MaxRankedModels {
		out = out[:MaxRankedModels]
	}
	return out
}

// decodeModelUsage reads the loosely typed modelUsage array. Entries that
// fail to decode still occupy a slot.
func decodeModelUsage(raw []json.RawMessage) []models.ModelUsageEntry {
	return lo.Map(raw, func(r json.RawMessage, _ int) models.ModelUsageEntry {
		var e models.ModelUsageEntry
		_ = json.Unmarshal(r, &e)
		return e
	})
}

// RankLog counts log entries per model and returns the top five, most used
// first. Ties keep first-seen order.
func RankLog(entries []models.UsageLogEntry) []models.ModelUsageEntry {
	name := func(e models.UsageLogEntry) string {
		if e.ModelID == "" {
			return models.UnknownModelName
		}
		return e.ModelID
	}

	counts := lo.CountValuesBy(entries, name)
	order := lo.Uniq(lo.Map(entries, func(e models.UsageLogEntry, _ int) string { return name(e) }))

	ranked := lo.Map(order, func(n string, _ int) models.ModelUsageEntry {
		return models.ModelUsageEntry{Name: n, Count: counts[n]}
	})
	slices.SortStableFunc(ranked, func(a, b models.ModelUsageEntry) int {
		return b.Count - a.Count
	})
	return RankModels(ranked)
}

// CountSince returns how many entries are at or after since.
func CountSince(entries []models.UsageLogEntry, since time.Time) int {
	return lo.CountBy(entries, func(e models.UsageLogEntry) bool {
		return !e.Timestamp.IsZero() && !e.Timestamp.Before(since)
	})
}

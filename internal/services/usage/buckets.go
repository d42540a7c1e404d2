package usage

import (
	"time"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// midnight returns the start of t's calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// BucketDaily spreads entries over the seven calendar days ending today,
// oldest first. Each entry counts once; entries outside the window are
// dropped.
func BucketDaily(entries []models.UsageLogEntry, now time.Time, loc *time.Location) [7]models.DailyBucket {
	if loc == nil {
		loc = time.Local
	}

	today := midnight(now, loc)
	start := today.AddDate(0, 0, -6)

	var buckets [7]models.DailyBucket
	days := make(map[string]int, len(buckets))
	for i := range buckets {
		day := start.AddDate(0, 0, i)
		buckets[i].Day = models.WeekdayLabels[day.Weekday()]
		days[day.Format(time.DateOnly)] = i
	}

	for _, e := range entries {
		if e.Timestamp.IsZero() {
			continue
		}
		if i, ok := days[e.Timestamp.In(loc).Format(time.DateOnly)]; ok {
			buckets[i].Calls++
		}
	}
	return buckets
}

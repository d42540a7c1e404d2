package usage

import (
	"testing"
	"time"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

func TestBucketDaily_Labels(t *testing.T) {
	buckets := BucketDaily(nil, fixedNow, time.UTC)

	// fixedNow is a Wednesday, so the window runs Thursday..Wednesday.
	want := []string{"Thu", "Fri", "Sat", "Sun", "Mon", "Tue", "Wed"}
	for i, b := range buckets {
		if b.Day != want[i] {
			t.Errorf("bucket[%d].Day = %q, want %q", i, b.Day, want[i])
		}
		if b.Calls != 0 {
			t.Errorf("bucket[%d].Calls = %d, want 0", i, b.Calls)
		}
	}
}

func TestBucketDaily_SumsInWindowEntries(t *testing.T) {
	at := func(month time.Month, day, hour int) models.UsageLogEntry {
		return models.UsageLogEntry{Timestamp: time.Date(2024, month, day, hour, 0, 0, 0, time.UTC), ModelID: "m"}
	}

	entries := []models.UsageLogEntry{
		at(time.May, 9, 0),   // first day of the window, at midnight
		at(time.May, 9, 23),  // same day
		at(time.May, 12, 10), // Sunday
		at(time.May, 15, 1),  // today
		at(time.May, 15, 11), // today
		at(time.May, 8, 23),  // day before the window
		at(time.May, 16, 0),  // tomorrow
		{ModelID: "no-timestamp"},
	}

	buckets := BucketDaily(entries, fixedNow, time.UTC)

	want := []int{2, 0, 0, 1, 0, 0, 2}
	total := 0
	for i, b := range buckets {
		if b.Calls != want[i] {
			t.Errorf("bucket[%d] (%s) = %d, want %d", i, b.Day, b.Calls, want[i])
		}
		total += b.Calls
	}
	if total != 5 {
		t.Errorf("sum = %d, want 5 in-window entries", total)
	}
}

func TestBucketDaily_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 02:00 UTC on the 15th is still the 14th at UTC-5.
	e := models.UsageLogEntry{Timestamp: time.Date(2024, time.May, 15, 2, 0, 0, 0, time.UTC)}

	buckets := BucketDaily([]models.UsageLogEntry{e}, fixedNow, loc)
	if buckets[5].Calls != 1 || buckets[5].Day != "Tue" {
		t.Errorf("expected the entry on Tuesday, got %+v", buckets)
	}
}

func TestBucketDaily_NilLocation(t *testing.T) {
	buckets := BucketDaily(nil, fixedNow, nil)
	if len(buckets) != 7 {
		t.Fatalf("len = %d", len(buckets))
	}
}

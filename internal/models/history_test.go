package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "24 Hours"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"AllTime", TimeRangeAllTime, "All Time"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	tests := []struct {
		tr   TimeRange
		want TimeRange
	}{
		{TimeRange24Hours, TimeRange7Days},
		{TimeRange7Days, TimeRange30Days},
		{TimeRange30Days, TimeRangeAllTime},
		{TimeRangeAllTime, TimeRange24Hours},
	}
	for _, tt := range tests {
		if got := tt.tr.Next(); got != tt.want {
			t.Errorf("%v.Next() = %v, want %v", tt.tr, got, tt.want)
		}
	}
}

func TestTimeRange_Since(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	if got := TimeRangeAllTime.Since(now); !got.IsZero() {
		t.Errorf("AllTime.Since() = %v, want zero", got)
	}
	if got := TimeRange7Days.Since(now); !got.Equal(now.AddDate(0, 0, -7)) {
		t.Errorf("7Days.Since() = %v", got)
	}
}

func TestUsageSnapshot_Percent(t *testing.T) {
	s := UsageSnapshot{QuotaUsed: 3400, QuotaTotal: 50000}
	if got := s.Percent(); got != 7 {
		t.Errorf("Percent() = %d, want 7", got)
	}
}

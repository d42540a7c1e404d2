package models

import (
	"encoding/json"
	"testing"
)

func TestQuotaPercent(t *testing.T) {
	tests := []struct {
		name        string
		used, total int
		want        int
	}{
		{"ZeroTotal", 100, 0, 0},
		{"ZeroBoth", 0, 0, 0},
		{"Example", 3400, 50000, 7},
		{"RoundsHalfUp", 1, 200, 1},
		{"RoundsDown", 1, 300, 0},
		{"Full", 50000, 50000, 100},
		{"OverQuota", 60000, 50000, 120},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := QuotaPercent(tt.used, tt.total); got != tt.want {
				t.Errorf("QuotaPercent(%d, %d) = %d, want %d", tt.used, tt.total, got, tt.want)
			}
		})
	}
}

func TestQuotaPercent_Monotonic(t *testing.T) {
	for _, total := range []int{1, 7, 333, 50000} {
		prev := QuotaPercent(0, total)
		for used := 1; used <= total*2; used += max(1, total/97) {
			got := QuotaPercent(used, total)
			if got < prev {
				t.Fatalf("QuotaPercent not monotonic at used=%d total=%d: %d < %d", used, total, got, prev)
			}
			prev = got
		}
	}
}

func TestUsageStats_Percent(t *testing.T) {
	s := UsageStats{QuotaUsed: 3400, QuotaTotal: 50000}
	if s.Percent() != 7 {
		t.Errorf("Percent() = %d, want 7", s.Percent())
	}
}

func TestUsageLogEntry_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantModel string
		wantCount int
		wantZero  bool
	}{
		{"ModelID", `{"timestamp":"2026-03-10T10:00:00Z","modelId":"m1","count":3}`, "m1", 3, false},
		{"ModelString", `{"timestamp":"2026-03-10T10:00:00Z","model":"m2"}`, "m2", 0, false},
		{"ModelDocument", `{"createdAt":"2026-03-10T10:00:00Z","model":{"_id":"x","name":"GPT-4"}}`, "GPT-4", 0, false},
		{"NegativeCount", `{"timestamp":"2026-03-10","count":-4}`, "", 0, false},
		{"BadTimestamp", `{"timestamp":"yesterday"}`, "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e UsageLogEntry
			if err := json.Unmarshal([]byte(tt.input), &e); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if e.ModelID != tt.wantModel {
				t.Errorf("ModelID = %q, want %q", e.ModelID, tt.wantModel)
			}
			if e.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", e.Count, tt.wantCount)
			}
			if e.Timestamp.IsZero() != tt.wantZero {
				t.Errorf("Timestamp.IsZero() = %v, want %v", e.Timestamp.IsZero(), tt.wantZero)
			}
		})
	}
}

func TestDeveloperStats_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNil   bool
		wantCount int
	}{
		{"array", `{"todayCalls":1,"modelUsage":[{"modelName":"A"},{"modelName":"B"}]}`, false, 2},
		{"empty array", `{"todayCalls":1,"modelUsage":[]}`, false, 0},
		{"missing", `{"todayCalls":1}`, true, 0},
		{"null", `{"todayCalls":1,"modelUsage":null}`, true, 0},
		{"object", `{"todayCalls":1,"modelUsage":{"A":3}}`, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s DeveloperStats
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if s.TodayCalls != 1 {
				t.Errorf("TodayCalls = %d, want 1", s.TodayCalls)
			}
			if (s.ModelUsage == nil) != tt.wantNil {
				t.Errorf("ModelUsage nil = %v, want %v", s.ModelUsage == nil, tt.wantNil)
			}
			if len(s.ModelUsage) != tt.wantCount {
				t.Errorf("len(ModelUsage) = %d, want %d", len(s.ModelUsage), tt.wantCount)
			}
		})
	}
}

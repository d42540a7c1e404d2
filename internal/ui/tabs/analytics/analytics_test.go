package analytics

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
)

func sampleResult(tier usage.Tier) usage.Result {
	var buckets [7]models.DailyBucket
	for i, day := range models.WeekdayLabels {
		buckets[i] = models.DailyBucket{Day: day, Calls: i * 10}
	}
	return usage.Result{
		ResolvedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Stats:      models.UsageStats{TodayCalls: 1200, QuotaUsed: 34000, QuotaTotal: 50000, ActiveModels: 5},
		Models: []models.ModelUsageEntry{
			{Name: "gemini-pro", Count: 40},
			{Name: "text-bison", Count: 12},
		},
		Buckets:               buckets,
		Tier:                  tier,
		ActiveModelsEstimated: tier == usage.TierDerived,
	}
}

func newModel(t *testing.T) (*Model, *app.State) {
	t.Helper()
	state := app.NewState()
	state.SetLoading(app.ResourceInitial, false)
	m := New(state, nil)
	m.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }
	m.SetSize(120, 200)
	return m, state
}

func TestNew(t *testing.T) {
	m := New(app.NewState(), nil)
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.timeRange != app.HistoryRange {
		t.Errorf("timeRange = %v, want %v", m.timeRange, app.HistoryRange)
	}
	if m.Init() == nil {
		t.Error("Init returned nil")
	}
}

func TestView_Loading(t *testing.T) {
	state := app.NewState()
	m := New(state, nil)
	m.SetSize(80, 24)
	if view := m.View(); !strings.Contains(view, "Loading analytics") {
		t.Errorf("expected loading view, got %q", view)
	}
}

func TestView_Empty(t *testing.T) {
	m, _ := newModel(t)
	if view := m.View(); !strings.Contains(view, "No analytics yet") {
		t.Errorf("expected empty state, got %q", view)
	}
}

func TestView_WithUsage(t *testing.T) {
	tests := []struct {
		name string
		tier usage.Tier
		want []string
	}{
		{"live", usage.TierPreferred, []string{"live", "1,200", "34,000 / 50,000", "68%", "gemini-pro"}},
		{"derived", usage.TierDerived, []string{"derived", "(est.)"}},
		{"offline", usage.TierStatic, []string{"offline"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newModel(t)
			state.SetUsage(sampleResult(tt.tier))
			m.Update(nil)

			view := m.View()
			for _, want := range tt.want {
				if !strings.Contains(view, want) {
					t.Errorf("view missing %q", want)
				}
			}
		})
	}
}

func TestView_UsageWarning(t *testing.T) {
	transport := &gateway.Error{
		Kind:   gateway.KindServiceUnavailable,
		Method: "GET",
		Path:   "/usage/developer/stats",
		Err:    errors.New("dial tcp 127.0.0.1:5000: connect: connection refused"),
	}
	logDown := &gateway.Error{
		Kind:   gateway.KindServiceUnavailable,
		Method: "GET",
		Path:   "/usage/my-usage",
		Err:    errors.New("read: connection reset by peer"),
	}

	tests := []struct {
		name string
		tier usage.Tier
		err  error
		want string
	}{
		{"StaticJoined", usage.TierStatic, errors.Join(transport, logDown), "Failed to load usage data"},
		{"DerivedGateway", usage.TierDerived, &gateway.Error{Kind: gateway.KindValidation, Message: "Stats are disabled"}, "Stats are disabled"},
		{"DerivedPlain", usage.TierDerived, errors.New("decode stats:\nunexpected token"), "Failed to load usage data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newModel(t)
			res := sampleResult(tt.tier)
			res.Err = tt.err
			state.SetUsage(res)
			m.Update(nil)

			view := m.View()
			if !strings.Contains(view, tt.want) {
				t.Errorf("view missing %q", tt.want)
			}
			for _, leak := range []string{"dial tcp", "connection reset", "unexpected token", "/usage/"} {
				if strings.Contains(view, leak) {
					t.Errorf("view leaked transport detail %q", leak)
				}
			}
		})
	}
}

func TestSync_AnimatesQuotaBar(t *testing.T) {
	m, state := newModel(t)
	m.Update(nil)
	if m.quotaBar.Percent() != 0 {
		t.Fatalf("Percent = %v before data", m.quotaBar.Percent())
	}

	state.SetUsage(sampleResult(usage.TierPreferred))
	_, cmd := m.Update(nil)
	if cmd == nil {
		t.Fatal("expected animation command after new usage")
	}
	if m.quotaBar.Percent() != 68 {
		t.Errorf("Percent = %v, want 68", m.quotaBar.Percent())
	}
	if !m.quotaBar.Animating() {
		t.Error("quota bar should be animating")
	}

	for range 200 {
		m.Update(components.AnimationTickMsg(time.Now()))
	}
	if m.quotaBar.Current() != 68 {
		t.Errorf("Current = %v after animation, want 68", m.quotaBar.Current())
	}
}

func TestToggleRange(t *testing.T) {
	m, state := newModel(t)
	state.SetUsage(sampleResult(usage.TierPreferred))
	state.SetHistory([]models.UsageSnapshot{
		{Timestamp: time.Now(), Tier: "live", TodayCalls: 10, QuotaUsed: 100, QuotaTotal: 1000},
	})
	m.Update(nil)

	if got := len(m.history()); got != 1 {
		t.Fatalf("history len = %d, want 1", got)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.timeRange != app.HistoryRange.Next() {
		t.Errorf("timeRange = %v, want %v", m.timeRange, app.HistoryRange.Next())
	}
	if got := len(m.history()); got != 0 {
		t.Errorf("history for new range should be empty until loaded, got %d", got)
	}

	m.Update(historyLoadedMsg{timeRange: m.timeRange, history: []models.UsageSnapshot{
		{Tier: "derived", TodayCalls: 4},
		{Tier: "live", TodayCalls: 8},
	}})
	if got := len(m.history()); got != 2 {
		t.Errorf("history len = %d, want 2", got)
	}

	// A load for a range that is no longer selected is dropped.
	m.Update(historyLoadedMsg{timeRange: app.HistoryRange, history: nil})
	if got := len(m.history()); got != 2 {
		t.Errorf("stale history applied, len = %d", got)
	}

	view := m.View()
	if !strings.Contains(view, m.timeRange.String()) {
		t.Errorf("view missing range label %q", m.timeRange.String())
	}
	if !strings.Contains(view, "2 snapshots") {
		t.Error("view missing history summary")
	}
}

func TestView_Outlook(t *testing.T) {
	at := func(h int, used int) models.UsageSnapshot {
		return models.UsageSnapshot{
			Timestamp:  time.Date(2026, 10, 17, h, 0, 0, 0, time.UTC),
			QuotaUsed:  used,
			QuotaTotal: 50000,
		}
	}

	tests := []struct {
		name    string
		history []models.UsageSnapshot
		want    string
	}{
		{"no history", nil, ""},
		{"steady", []models.UsageSnapshot{at(2, 33990), at(12, 34000)}, "On track"},
		{"burning", []models.UsageSnapshot{at(2, 33000), at(12, 34000)}, "quota runs out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, state := newModel(t)
			state.SetUsage(sampleResult(usage.TierPreferred))
			state.SetHistory(tt.history)

			got := m.renderOutlook(state.GetUsage())
			if tt.want == "" {
				if got != "" {
					t.Errorf("outlook = %q, want none", got)
				}
				return
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("outlook = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	m := New(app.NewState(), nil)
	if len(m.ShortHelp()) == 0 {
		t.Error("ShortHelp is empty")
	}
	if len(m.FullHelp()) != 2 {
		t.Errorf("FullHelp rows = %d, want 2", len(m.FullHelp()))
	}
}

func TestFormatCount(t *testing.T) {
	tests := map[int]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567"}
	for in, want := range tests {
		if got := formatCount(in); got != want {
			t.Errorf("formatCount(%d) = %q, want %q", in, got, want)
		}
	}
}

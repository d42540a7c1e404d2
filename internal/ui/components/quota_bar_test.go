package components

import (
	"strings"
	"testing"
	"time"
)

func TestNewQuotaBar(t *testing.T) {
	bar := NewQuotaBar()
	if bar.Percent() != 0 {
		t.Errorf("percent = %f, want 0", bar.Percent())
	}
	if bar.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestQuotaBar_Animation(t *testing.T) {
	bar := NewQuotaBar()
	if cmd := bar.SetPercent(40); cmd == nil {
		t.Fatal("SetPercent should start the animation")
	}
	if !bar.Animating() {
		t.Fatal("bar should be animating")
	}

	for range 200 {
		bar, _ = bar.Update(AnimationTickMsg(time.Now()))
		if !bar.Animating() {
			break
		}
	}
	if bar.Animating() {
		t.Fatal("animation should settle")
	}
	if bar.Current() != 40 {
		t.Errorf("Current = %f, want 40", bar.Current())
	}

	bar.SetPercent(10)
	bar, _ = bar.Update(AnimationTickMsg(time.Now()))
	if c := bar.Current(); c >= 40 || c < 10 {
		t.Errorf("Current = %f, want moving down towards 10", c)
	}
}

func TestQuotaBar_View(t *testing.T) {
	bar := NewQuotaBar()
	bar.SetLabel("Quota")
	bar.SetPercent(75.4)
	view := bar.View(60)
	if !strings.Contains(view, "Quota") || !strings.Contains(view, "75%") {
		t.Errorf("View() = %q", view)
	}
}

func TestQuotaBar_ViewCompact(t *testing.T) {
	bar := NewQuotaBar()
	if view := bar.ViewCompact(50, 20); !strings.Contains(view, "50%") {
		t.Error("ViewCompact() should contain percentage")
	}
	if view := bar.ViewCompact(130, 20); !strings.Contains(view, "130%") {
		t.Error("over-quota percentages are shown as-is")
	}
}

func TestMonthProgress(t *testing.T) {
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if p := MonthProgress(start); p != 0 {
		t.Errorf("MonthProgress(start) = %f", p)
	}
	mid := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	if p := MonthProgress(mid); p != 0.5 {
		t.Errorf("MonthProgress(mid) = %f, want 0.5", p)
	}
}

func TestRenderMonthBar(t *testing.T) {
	now := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	view := RenderMonthBar(now, "Resets in", 60)
	if !strings.Contains(view, "Resets in") || !strings.Contains(view, "13d 12h") {
		t.Errorf("RenderMonthBar = %q", view)
	}
}

func TestRenderGradientBar(t *testing.T) {
	if s := RenderGradientBar(50, 10); strings.Count(s, "█") != 5 {
		t.Errorf("want 5 filled cells, got %q", s)
	}
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestSimpleQuotaBar(t *testing.T) {
	if s := SimpleQuotaBar(50, "Test", 40); !strings.Contains(s, "Test") || !strings.Contains(s, "50%") {
		t.Errorf("SimpleQuotaBar = %q", s)
	}
}

func TestSimpleQuotaBarLoading(t *testing.T) {
	a := SimpleQuotaBarLoading("Quota", 40, 0)
	b := SimpleQuotaBarLoading("Quota", 40, 30)
	if a == "" || a == b {
		t.Error("shimmer should move between frames")
	}
}

func TestHexToRGB(t *testing.T) {
	if got := hexToRGB("#ff6b6b"); got != [3]int{255, 107, 107} {
		t.Errorf("hexToRGB = %v", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("interpolateColor = %q", got)
	}
}

// Package projection estimates when the monthly call quota runs out from the
// locally stored usage snapshots.
package projection

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

const (
	lowConfThreshold = 6
	medConfThreshold = 24

	// criticalWindow is how close depletion must be to count as critical.
	criticalWindow = 24 * time.Hour
)

// Status indicates how urgent the projected depletion is.
type Status string

const (
	StatusSafe     Status = "SAFE"
	StatusWarning  Status = "WARNING"
	StatusCritical Status = "CRITICAL"
	StatusUnknown  Status = "UNKNOWN"
)

// Projection is the quota outlook for the rest of the billing month.
type Projection struct {
	ResetAt       time.Time
	DepleteAt     time.Time
	Status        Status
	Confidence    string
	Used          int
	Total         int
	ProjectedUsed int
	DataPoints    int
	// Rate is calls per hour over the current month's snapshots.
	Rate float64
}

// WillDeplete reports whether the quota runs out before it resets.
func (p Projection) WillDeplete() bool {
	return !p.DepleteAt.IsZero() && p.DepleteAt.Before(p.ResetAt)
}

// MonthReset returns the start of the month after now, in now's location.
func MonthReset(now time.Time) time.Time {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start.AddDate(0, 1, 0)
}

// Calculate projects stats forward to the month reset. history may be in any
// order; snapshots from earlier months and before the last quota reset are
// ignored.
func Calculate(history []models.UsageSnapshot, stats models.UsageStats, now time.Time) Projection {
	p := Projection{
		ResetAt:       MonthReset(now),
		Status:        StatusUnknown,
		Used:          stats.QuotaUsed,
		Total:         stats.QuotaTotal,
		ProjectedUsed: stats.QuotaUsed,
	}

	points := currentRun(history, now)
	p.DataPoints = len(points)
	p.Confidence = confidence(p.DataPoints)

	if len(points) >= 2 {
		first, last := points[0], points[len(points)-1]
		if hours := last.Timestamp.Sub(first.Timestamp).Hours(); hours > 0 {
			p.Rate = float64(last.QuotaUsed-first.QuotaUsed) / hours
		}
	}

	if p.Total <= 0 {
		return p
	}

	remaining := p.Total - p.Used
	if remaining <= 0 {
		p.Status = StatusCritical
		p.DepleteAt = now
		return p
	}
	if p.Rate <= 0 {
		if p.DataPoints >= 2 {
			p.Status = StatusSafe
		}
		return p
	}

	untilReset := p.ResetAt.Sub(now)
	p.ProjectedUsed = p.Used + int(p.Rate*untilReset.Hours())

	hoursLeft := float64(remaining) / p.Rate
	p.DepleteAt = now.Add(time.Duration(hoursLeft * float64(time.Hour)))

	switch {
	case !p.WillDeplete():
		p.Status = StatusSafe
	case p.DepleteAt.Sub(now) < criticalWindow:
		p.Status = StatusCritical
	default:
		p.Status = StatusWarning
	}
	return p
}

// currentRun returns this month's snapshots, oldest first, starting after
// the last point where usage went down.
func currentRun(history []models.UsageSnapshot, now time.Time) []models.UsageSnapshot {
	monthStart := MonthReset(now).AddDate(0, -1, 0)

	points := lo.Filter(history, func(s models.UsageSnapshot, _ int) bool {
		return !s.Timestamp.Before(monthStart) && !s.Timestamp.After(now)
	})
	sort.Slice(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	start := 0
	for i := 1; i < len(points); i++ {
		if points[i].QuotaUsed < points[i-1].QuotaUsed {
			start = i
		}
	}
	return points[start:]
}

func confidence(points int) string {
	switch {
	case points < lowConfThreshold:
		return "low"
	case points < medConfThreshold:
		return "medium"
	default:
		return "high"
	}
}

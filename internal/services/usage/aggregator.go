// Package usage resolves the analytics view from the backend, falling back
// from pre-aggregated statistics to the raw usage log to a static series.
package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
)

// Source is the subset of the gateway the aggregator reads from.
type Source interface {
	DeveloperStats(ctx context.Context) (models.DeveloperStats, error)
	MyUsage(ctx context.Context) ([]models.UsageLogEntry, error)
}

// Tier records where a Result's numbers came from.
type Tier int

const (
	// TierPreferred means the statistics endpoint answered.
	TierPreferred Tier = iota
	// TierDerived means the numbers were computed from the raw log.
	TierDerived
	// TierStatic means both endpoints failed and demo data is shown.
	TierStatic
)

func (t Tier) String() string {
	switch t {
	case TierPreferred:
		return "live"
	case TierDerived:
		return "derived"
	case TierStatic:
		return "offline"
	default:
		return "unknown"
	}
}

// Result is one resolved analytics view.
type Result struct {
	ResolvedAt time.Time
	Err        error
	Models     []models.ModelUsageEntry
	Stats      models.UsageStats
	Buckets    [7]models.DailyBucket
	Tier       Tier
	// ActiveModelsEstimated is set when Stats.ActiveModels is the placeholder.
	ActiveModelsEstimated bool
}

// Aggregator resolves usage analytics.
type Aggregator struct {
	src        Source
	now        func() time.Time
	loc        *time.Location
	quotaTotal int
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLocation sets the zone used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) { a.loc = loc }
}

// WithQuotaTotal sets the monthly quota denominator.
func WithQuotaTotal(total int) Option {
	return func(a *Aggregator) { a.quotaTotal = total }
}

// New creates an aggregator reading from src.
func New(src Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:        src,
		now:        time.Now,
		loc:        time.Local,
		quotaTotal: models.DefaultQuotaTotal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// QuotaTotal returns the configured quota denominator.
func (a *Aggregator) QuotaTotal() int {
	return a.quotaTotal
}

// Resolve fetches statistics, then the raw log, and builds the best result
// the two allow. It always returns renderable data.
func (a *Aggregator) Resolve(ctx context.Context) Result {
	stats, statsErr := a.src.DeveloperStats(ctx)
	if err := canceled(ctx, statsErr); err != nil {
		return a.static(err)
	}
	if statsErr != nil {
		logger.Warn("developer stats unavailable", "error", statsErr)
	}

	logs, logErr := a.src.MyUsage(ctx)
	if err := canceled(ctx, logErr); err != nil {
		return a.static(err)
	}
	if logErr != nil {
		logger.Warn("usage log unavailable", "error", logErr)
	}

	now := a.now().In(a.loc)

	switch {
	case statsErr == nil:
		res := Result{
			Tier: TierPreferred,
			Stats: models.UsageStats{
				TodayCalls:   stats.TodayCalls,
				QuotaUsed:    stats.MonthlyUsage,
				QuotaTotal:   a.quotaTotal,
				ActiveModels: stats.ActiveModels,
			},
			Models:     rankStats(stats),
			ResolvedAt: now,
		}
		if logErr != nil {
			res.Buckets = StaticBuckets()
			res.Err = fmt.Errorf("usage log: %w", logErr)
		} else {
			res.Buckets = BucketDaily(logs, now, a.loc)
		}
		return res

	case logErr == nil:
		today := midnight(now, a.loc)
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, a.loc)
		return Result{
			Tier: TierDerived,
			Stats: models.UsageStats{
				TodayCalls:   CountSince(logs, today),
				QuotaUsed:    CountSince(logs, monthStart),
				QuotaTotal:   a.quotaTotal,
				ActiveModels: PlaceholderActiveModels,
			},
			Buckets:               BucketDaily(logs, now, a.loc),
			Models:                RankLog(logs),
			ResolvedAt:            now,
			ActiveModelsEstimated: true,
		}

	default:
		res := a.static(errors.Join(statsErr, logErr))
		res.ResolvedAt = now
		return res
	}
}

// canceled returns the cancellation that ended a fetch, or nil. A gateway
// call can report cancellation while ctx itself is still live.
func canceled(ctx context.Context, err error) error {
	if errors.Is(err, gateway.ErrCanceled) {
		return err
	}
	return ctx.Err()
}

// rankStats ranks the statistics' model usage. A payload without a
// modelUsage array gets the static ranking.
func rankStats(stats models.DeveloperStats) []models.ModelUsageEntry {
	if stats.ModelUsage == nil {
		return StaticModels()
	}
	return RankModels(decodeModelUsage(stats.ModelUsage))
}

func (a *Aggregator) static(err error) Result {
	return Result{
		Tier:       TierStatic,
		Stats:      models.UsageStats{QuotaTotal: a.quotaTotal},
		Buckets:    StaticBuckets(),
		Models:     StaticModels(),
		Err:        err,
		ResolvedAt: a.now().In(a.loc),
	}
}

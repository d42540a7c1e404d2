package services

import (
	"fmt"
	"sync"

	"github.com/gen2brain/beeep"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

// quotaThresholds are the usage percentages that trigger a notification when
// crossed upward.
var quotaThresholds = []int{80, 100}

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// quotaAlerts remembers the previous result so only transitions notify.
type quotaAlerts struct {
	notify func(title, body string) error
	last   *usage.Result
	mu     sync.Mutex
}

func newQuotaAlerts(notify func(title, body string) error) *quotaAlerts {
	return &quotaAlerts{notify: notify}
}

func (a *quotaAlerts) reset() {
	a.mu.Lock()
	a.last = nil
	a.mu.Unlock()
}

// observe compares res with the previous result and notifies on threshold
// crossings and on degradation to offline data.
func (a *quotaAlerts) observe(res usage.Result) {
	a.mu.Lock()
	prev := a.last
	a.last = &res
	a.mu.Unlock()

	if prev == nil {
		return
	}

	if res.Tier == usage.TierStatic && prev.Tier != usage.TierStatic {
		a.send("Usage data unavailable", "Analytics are showing offline sample data.")
		return
	}
	if res.Tier == usage.TierStatic || prev.Tier == usage.TierStatic {
		return
	}

	oldPercent := prev.Stats.Percent()
	newPercent := res.Stats.Percent()
	for i := len(quotaThresholds) - 1; i >= 0; i-- {
		th := quotaThresholds[i]
		if oldPercent < th && newPercent >= th {
			a.send(
				fmt.Sprintf("Quota %d%% used", th),
				fmt.Sprintf("%d of %d monthly calls used (%d%%).", res.Stats.QuotaUsed, res.Stats.QuotaTotal, newPercent),
			)
			return
		}
	}
}

func (a *quotaAlerts) send(title, body string) {
	if a.notify == nil {
		return
	}
	if err := a.notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

// RefreshUsage resolves analytics, records a snapshot and fires quota
// notifications.
func (m *Manager) RefreshUsage(ctx context.Context) usage.Result {
	res := m.usage.Resolve(ctx)
	if ctx.Err() != nil {
		return res
	}
	if errors.Is(res.Err, gateway.ErrAuthentication) {
		_ = m.checkAuth(res.Err)
		return res
	}

	m.recordSnapshot(res)
	m.alerts.observe(res)
	return res
}

func (m *Manager) recordSnapshot(res usage.Result) {
	if m.database == nil {
		return
	}
	snap := &models.UsageSnapshot{
		Timestamp:    res.ResolvedAt,
		Email:        m.accountKey(),
		Tier:         res.Tier.String(),
		TodayCalls:   res.Stats.TodayCalls,
		QuotaUsed:    res.Stats.QuotaUsed,
		QuotaTotal:   res.Stats.QuotaTotal,
		ActiveModels: res.Stats.ActiveModels,
	}
	if err := m.database.InsertUsageSnapshot(snap); err != nil {
		logger.Error("failed to record usage snapshot", "error", err)
	}
}

// accountKey identifies the signed-in account in the local cache.
func (m *Manager) accountKey() string {
	user, ok := m.store.Identity()
	if !ok {
		return ""
	}
	if user.Email != "" {
		return user.Email
	}
	return user.ID
}

// UsageHistory returns recorded snapshots for the signed-in account.
func (m *Manager) UsageHistory(r models.TimeRange) []models.UsageSnapshot {
	if m.database == nil {
		return nil
	}
	history, err := m.database.GetUsageSnapshots(m.accountKey(), r.Since(time.Now()))
	if err != nil {
		logger.Error("failed to load usage history", "error", err)
		return nil
	}
	return history
}

// HistoryRetention is how long usage snapshots are kept by CompactHistory.
const HistoryRetention = 90 * 24 * time.Hour

// CompactHistory drops usage snapshots older than HistoryRetention and
// reclaims the freed space. It returns the number of snapshots removed.
func (m *Manager) CompactHistory() (int64, error) {
	if m.database == nil {
		return 0, nil
	}
	n, err := m.database.PruneUsageSnapshots(time.Now().Add(-HistoryRetention))
	if err != nil {
		return 0, err
	}
	if err := m.database.Vacuum(); err != nil {
		return n, fmt.Errorf("failed to vacuum database: %w", err)
	}
	logger.Info("compacted usage history", "removed", n)
	return n, nil
}

// KeyEvents returns the newest recorded key transitions.
func (m *Manager) KeyEvents(limit int) []models.KeyEvent {
	if m.database == nil {
		return nil
	}
	events, err := m.database.GetKeyEvents(m.accountKey(), limit)
	if err != nil {
		logger.Error("failed to load key events", "error", err)
		return nil
	}
	return events
}

// LoadKeys fetches the caller's keys.
func (m *Manager) LoadKeys(ctx context.Context) ([]models.APIKey, error) {
	keys, err := m.keys.List(ctx)
	return keys, m.checkAuth(err)
}

// CreateKey issues a key and records the event.
func (m *Manager) CreateKey(ctx context.Context, sel models.ModelSelection) (models.APIKey, error) {
	key, err := m.keys.Create(ctx, sel)
	if err != nil {
		return key, m.checkAuth(err)
	}
	m.recordKeyEvent(key, models.KeyEventCreated)
	m.broadcastKeys()
	return key, nil
}

// RevokeKey deactivates a key and records the event.
func (m *Manager) RevokeKey(ctx context.Context, id string) (models.APIKey, error) {
	before, known := m.keys.Get(id)
	key, err := m.keys.Revoke(ctx, id)
	if err != nil {
		return key, m.checkAuth(err)
	}
	if known && before.IsActive() {
		m.recordKeyEvent(key, models.KeyEventRevoked)
		m.broadcastKeys()
	}
	return key, nil
}

// RegenerateKey is reserved and always refused.
func (m *Manager) RegenerateKey(id string) error {
	return m.keys.Regenerate(id)
}

func (m *Manager) broadcastKeys() {
	m.broadcast(KeysChangedEvent{Keys: m.keys.Keys(), Summary: m.keys.Summary()})
}

func (m *Manager) recordKeyEvent(key models.APIKey, t models.KeyEventType) {
	if m.database == nil {
		return
	}
	event := &models.KeyEvent{
		Timestamp: time.Now(),
		Email:     m.accountKey(),
		KeyID:     key.ID,
		Masked:    key.Masked(),
		ModelID:   key.ModelID,
		Type:      t,
	}
	if err := m.database.InsertKeyEvent(event); err != nil {
		logger.Error("failed to record key event", "error", err)
	}
}

// LoadCatalog resolves the model catalog.
func (m *Manager) LoadCatalog(ctx context.Context) catalog.Result {
	res := m.catalog.Resolve(ctx)
	_ = m.checkAuth(res.Err)
	return res
}

// Snapshot is everything RefreshAll loaded.
type Snapshot struct {
	KeysErr error
	Catalog catalog.Result
	Keys    []models.APIKey
	Usage   usage.Result
}

// RefreshAll loads analytics, keys and the catalog concurrently. It fails
// only when the session is rejected.
func (m *Manager) RefreshAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snap.Usage = m.usage.Resolve(gctx)
		return authOnly(snap.Usage.Err)
	})
	g.Go(func() error {
		snap.Keys, snap.KeysErr = m.keys.List(gctx)
		return authOnly(snap.KeysErr)
	})
	g.Go(func() error {
		snap.Catalog = m.catalog.Resolve(gctx)
		return authOnly(snap.Catalog.Err)
	})

	if err := g.Wait(); err != nil {
		return snap, m.checkAuth(err)
	}

	m.recordSnapshot(snap.Usage)
	m.alerts.observe(snap.Usage)
	return snap, nil
}

func authOnly(err error) error {
	if err != nil && errors.Is(err, gateway.ErrAuthentication) {
		return err
	}
	return nil
}

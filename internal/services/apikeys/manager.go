// Package apikeys tracks the caller's API keys and applies lifecycle
// operations against the backend.
package apikeys

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// Local precondition failures. None of these reach the backend.
var (
	ErrSelectionRequired     = errors.New("select a model before creating a key")
	ErrKeyNotFound           = errors.New("api key not found")
	ErrKeyInactive           = errors.New("api key is inactive")
	ErrRegenerateUnsupported = errors.New("key regeneration is not supported")
)

// KeyAPI is the subset of the gateway used for key lifecycle calls.
type KeyAPI interface {
	MyKeys(ctx context.Context) ([]models.APIKey, error)
	CreateKey(ctx context.Context, sel models.ModelSelection) (models.APIKey, error)
	RevokeKey(ctx context.Context, id string) error
}

// Summary counts keys by status.
type Summary struct {
	Total    int
	Active   int
	Inactive int
}

// Manager holds the known key set.
type Manager struct {
	api         KeyAPI
	catalogSize func() int
	now         func() time.Time
	revokes     singleflight.Group
	keys        []models.APIKey
	mu          sync.RWMutex
	scoped      bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithScopedMode requires a model selection on create when the catalog has
// models.
func WithScopedMode(enabled bool) Option {
	return func(m *Manager) { m.scoped = enabled }
}

// WithCatalogSize supplies the current catalog size for scoped mode.
func WithCatalogSize(size func() int) Option {
	return func(m *Manager) { m.catalogSize = size }
}

// New creates a key manager.
func New(api KeyAPI, opts ...Option) *Manager {
	m := &Manager{
		api:         api,
		catalogSize: func() int { return 0 },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Scoped reports whether scoped mode is on.
func (m *Manager) Scoped() bool {
	return m.scoped
}

// List fetches the caller's keys and replaces the known set.
func (m *Manager) List(ctx context.Context) ([]models.APIKey, error) {
	keys, err := m.api.MyKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	m.mu.Lock()
	m.keys = slices.Clone(keys)
	m.mu.Unlock()

	return slices.Clone(keys), nil
}

// Create issues a new key. In scoped mode a selection is required whenever
// the catalog is non-empty.
func (m *Manager) Create(ctx context.Context, sel models.ModelSelection) (models.APIKey, error) {
	if m.scoped && sel.IsZero() && m.catalogSize() > 0 {
		return models.APIKey{}, ErrSelectionRequired
	}

	key, err := m.api.CreateKey(ctx, sel)
	if err != nil {
		return models.APIKey{}, fmt.Errorf("failed to create key: %w", err)
	}

	key.Status = models.KeyActive
	if key.CreatedAt.IsZero() {
		key.CreatedAt = m.now()
	}
	if key.ModelID == "" && !sel.IsZero() {
		key.ModelID = sel.ModelID
	}

	m.mu.Lock()
	m.keys = append(m.keys, key)
	m.mu.Unlock()

	logger.Info("api key created", "id", key.ID, "key", key.Masked())
	return key, nil
}

// Revoke deactivates a key. Revoking an inactive key is a no-op and
// concurrent revokes of one key share a single backend call.
func (m *Manager) Revoke(ctx context.Context, id string) (models.APIKey, error) {
	key, ok := m.Get(id)
	if !ok {
		return models.APIKey{}, ErrKeyNotFound
	}
	if !key.IsActive() {
		return key, nil
	}

	v, err, _ := m.revokes.Do(id, func() (any, error) {
		if err := m.api.RevokeKey(ctx, id); err != nil {
			return nil, err
		}
		return m.markInactive(id)
	})
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return models.APIKey{}, err
		}
		return models.APIKey{}, fmt.Errorf("failed to revoke key: %w", err)
	}

	revoked := v.(models.APIKey)
	logger.Info("api key revoked", "id", id, "key", revoked.Masked())
	return revoked, nil
}

func (m *Manager) markInactive(id string) (models.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, i, ok := lo.FindIndexOf(m.keys, func(k models.APIKey) bool { return k.ID == id })
	if !ok {
		return models.APIKey{}, ErrKeyNotFound
	}
	m.keys[i].Status = models.KeyInactive
	return m.keys[i], nil
}

// Regenerate is reserved. It never contacts the backend.
func (m *Manager) Regenerate(id string) error {
	key, ok := m.Get(id)
	if !ok {
		return ErrKeyNotFound
	}
	if !key.IsActive() {
		return ErrKeyInactive
	}
	return ErrRegenerateUnsupported
}

// Keys returns a copy of the known keys.
func (m *Manager) Keys() []models.APIKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.keys)
}

// Get returns the key with id.
func (m *Manager) Get(id string) (models.APIKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return lo.Find(m.keys, func(k models.APIKey) bool { return k.ID == id })
}

// Summary counts the known keys by status.
func (m *Manager) Summary() Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	active := lo.CountBy(m.keys, func(k models.APIKey) bool { return k.IsActive() })
	return Summary{
		Total:    len(m.keys),
		Active:   active,
		Inactive: len(m.keys) - active,
	}
}

// Reset forgets every key. Used on logout.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.keys = nil
	m.mu.Unlock()
}

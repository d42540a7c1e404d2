// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/config"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/db"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/apikeys"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/session"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

type (
	// SessionChangedEvent is emitted on login, logout and session expiry.
	SessionChangedEvent struct {
		Session       *models.Session
		Reason        string
		Authenticated bool
	}

	// UsageUpdatedEvent is emitted when the poller resolved fresh analytics.
	UsageUpdatedEvent struct {
		History []models.UsageSnapshot
		Result  usage.Result
	}

	// KeysChangedEvent is emitted when the key set changed.
	KeysChangedEvent struct {
		Keys    []models.APIKey
		Summary apikeys.Summary
	}

	// CatalogLoadedEvent is emitted when the catalog was resolved.
	CatalogLoadedEvent struct {
		Result catalog.Result
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SessionChangedEvent) isServiceEvent() {}
func (UsageUpdatedEvent) isServiceEvent()   {}
func (KeysChangedEvent) isServiceEvent()    {}
func (CatalogLoadedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()          {}

// Option configures a Manager.
type Option func(*options)

type options struct {
	kv     session.KVStore
	notify func(title, body string) error
}

// WithKVStore keeps the session in kv instead of the session file.
func WithKVStore(kv session.KVStore) Option {
	return func(o *options) { o.kv = kv }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(notify func(title, body string) error) Option {
	return func(o *options) { o.notify = notify }
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	store       *session.Store
	fileStore   *session.FileStore
	client      *gateway.Client
	tracker     *gateway.Tracker
	usage       *usage.Aggregator
	keys        *apikeys.Manager
	catalog     *catalog.Resolver
	database    *db.DB
	alerts      *quotaAlerts
	eventChan   chan ServiceEvent
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
	interval    time.Duration
	closeOnce   sync.Once
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	o := options{notify: desktopNotify}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		eventChan: make(chan ServiceEvent, 100),
		stopChan:  make(chan struct{}),
		tracker:   gateway.NewTracker(),
		alerts:    newQuotaAlerts(o.notify),
		interval:  cfg.UsageRefreshInterval,
	}

	kv := o.kv
	if kv == nil {
		fs, err := session.NewFileStore(cfg.SessionPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open session file: %w", err)
		}
		m.fileStore = fs
		kv = fs
	}

	var err error
	m.store, err = session.New(kv)
	if err != nil {
		m.closeFileStore()
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		m.closeFileStore()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gwConfig := gateway.DefaultConfig(cfg.APIBaseURL)
	if cfg.RequestTimeout > 0 {
		gwConfig.Timeout = cfg.RequestTimeout
	}
	m.client = gateway.New(m.store, gwConfig)

	quotaTotal := cfg.QuotaTotal
	if quotaTotal == 0 {
		quotaTotal = models.DefaultQuotaTotal
	}
	m.usage = usage.New(m.client, usage.WithQuotaTotal(quotaTotal))
	m.catalog = catalog.New(m.client)
	m.keys = apikeys.New(m.client,
		apikeys.WithScopedMode(cfg.ScopedKeys),
		apikeys.WithCatalogSize(m.catalog.SelectableSize),
	)

	if m.fileStore != nil {
		m.fileStore.OnChange(func() {
			if err := m.store.Reload(); err != nil {
				logger.Warn("failed to reload session", "error", err)
			}
		})
	}

	go m.routeEvents()
	go m.pollUsage()

	return m, nil
}

func (m *Manager) closeFileStore() {
	if m.fileStore != nil {
		_ = m.fileStore.Close()
	}
}

// routeEvents forwards session store events to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.store.Events():
			m.handleSessionEvent(event)
		case <-m.stopChan:
			return
		}
	}
}

// handleSessionEvent only reacts to changes made outside this process;
// local login and logout broadcast directly.
func (m *Manager) handleSessionEvent(event session.Event) {
	if event.Type != session.EventSessionReloaded {
		return
	}

	if event.Session == nil {
		m.resetState()
		m.broadcast(SessionChangedEvent{Reason: "Signed out in another window"})
		return
	}
	m.broadcast(SessionChangedEvent{Session: event.Session, Authenticated: true})
}

// pollUsage refreshes analytics on a fixed interval while authenticated.
func (m *Manager) pollUsage() {
	if m.interval <= 0 {
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ticker.C:
			if !m.store.IsAuthenticated() {
				failing = false
				continue
			}
			ticket, ctx := m.tracker.Begin(gateway.ScopeUsage)
			res := m.RefreshUsage(ctx)
			if !m.tracker.Current(ticket) {
				continue
			}
			m.tracker.Finish(ticket)
			m.broadcast(UsageUpdatedEvent{Result: res, History: m.UsageHistory(models.TimeRange7Days)})

			if res.Tier == usage.TierStatic && !failing {
				m.broadcast(ErrorEvent{Service: "usage", Error: res.Err})
			}
			failing = res.Tier == usage.TierStatic
			m.retryCatalog()

		case <-m.stopChan:
			return
		}
	}
}

// retryCatalog re-resolves the catalog while only the built-in list is known.
func (m *Manager) retryCatalog() {
	if m.catalog.Last().Len() > 0 || !m.store.IsAuthenticated() {
		return
	}
	ticket, ctx := m.tracker.Begin(gateway.ScopeCatalog)
	res := m.LoadCatalog(ctx)
	if !m.tracker.Current(ticket) {
		return
	}
	m.tracker.Finish(ticket)
	if res.Source != catalog.OriginStatic {
		m.broadcast(CatalogLoadedEvent{Result: res})
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	select {
	case m.eventChan <- event:
	default:
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Tracker returns the request tracker shared with the UI.
func (m *Manager) Tracker() *gateway.Tracker {
	return m.tracker
}

// Session returns a copy of the current session, or nil.
func (m *Manager) Session() *models.Session {
	return m.store.Session()
}

// IsAuthenticated reports whether a session is present.
func (m *Manager) IsAuthenticated() bool {
	return m.store.IsAuthenticated()
}

// SessionExpiresAt returns the token expiry when the token carries one.
func (m *Manager) SessionExpiresAt() (time.Time, bool) {
	return m.store.ExpiresAt()
}

// Keys returns the known API keys.
func (m *Manager) Keys() []models.APIKey {
	return m.keys.Keys()
}

// KeySummary counts the known keys by status.
func (m *Manager) KeySummary() apikeys.Summary {
	return m.keys.Summary()
}

// ScopedKeys reports whether new keys must be bound to a model.
func (m *Manager) ScopedKeys() bool {
	return m.keys.Scoped()
}

// ModelChoices fetches the public model listing offered when binding a new
// key to a model.
func (m *Manager) ModelChoices(ctx context.Context) (models.Catalog, error) {
	return m.catalog.Selectable(ctx)
}

// Catalog returns the last live catalog.
func (m *Manager) Catalog() models.Catalog {
	return m.catalog.Last()
}

// QuotaTotal returns the configured monthly quota.
func (m *Manager) QuotaTotal() int {
	return m.usage.QuotaTotal()
}

// BaseURL returns the API root in use.
func (m *Manager) BaseURL() string {
	return m.client.BaseURL()
}

// SessionPath returns the session file, or "" for in-memory sessions.
func (m *Manager) SessionPath() string {
	if m.fileStore == nil {
		return ""
	}
	return m.fileStore.Path()
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.tracker.CancelAll()

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.fileStore != nil {
			if err := m.fileStore.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		if m.database != nil {
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}

// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/apikeys"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Loading resources.
const (
	ResourceInitial = "initial"
	ResourceUsage   = "usage"
	ResourceKeys    = "keys"
	ResourceCatalog = "catalog"
	ResourceAuth    = "auth"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Usage   bool
	Keys    bool
	Catalog bool
	Auth    bool
}

// State is the data shared between the root model and the tabs.
type State struct {
	LastUpdated time.Time

	session       *models.Session
	usage         *usage.Result
	catalog       *catalog.Result
	history       []models.UsageSnapshot
	keys          []models.APIKey
	events        []models.KeyEvent
	notifications []Notification
	summary       apikeys.Summary

	Loading LoadingState

	version uint64
	mu      sync.RWMutex
}

// NewState creates an empty state with the initial load pending.
func NewState() *State {
	return &State{
		notifications: make([]Notification, 0),
		Loading:       LoadingState{Initial: true},
	}
}

// Version increases every time data shown by the tabs changes.
func (s *State) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *State) touch() {
	s.version++
	s.LastUpdated = time.Now()
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceUsage:
		s.Loading.Usage = loading
	case ResourceKeys:
		s.Loading.Keys = loading
	case ResourceCatalog:
		s.Loading.Catalog = loading
	case ResourceAuth:
		s.Loading.Auth = loading
	}
}

// IsLoading reports whether resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case ResourceInitial:
		return s.Loading.Initial
	case ResourceUsage:
		return s.Loading.Usage
	case ResourceKeys:
		return s.Loading.Keys
	case ResourceCatalog:
		return s.Loading.Catalog
	case ResourceAuth:
		return s.Loading.Auth
	}
	return false
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Usage ||
		s.Loading.Keys ||
		s.Loading.Catalog ||
		s.Loading.Auth
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Usage {
		resources = append(resources, ResourceUsage)
	}
	if s.Loading.Keys {
		resources = append(resources, ResourceKeys)
	}
	if s.Loading.Catalog {
		resources = append(resources, ResourceCatalog)
	}
	if s.Loading.Auth {
		resources = append(resources, ResourceAuth)
	}
	return resources
}

// SetSession records the signed-in user, or nil after logout.
func (s *State) SetSession(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = sess
	s.touch()
}

// GetSession returns the current session, or nil.
func (s *State) GetSession() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// IsAuthenticated reports whether a session is present.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session != nil
}

// ClearData drops everything loaded for the previous session.
func (s *State) ClearData() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = nil
	s.catalog = nil
	s.history = nil
	s.keys = nil
	s.events = nil
	s.summary = apikeys.Summary{}
	s.touch()
}

// SetUsage stores a resolved analytics result.
func (s *State) SetUsage(res usage.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usage = &res
	s.touch()
}

// GetUsage returns the latest analytics result, or nil.
func (s *State) GetUsage() *usage.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage
}

// SetHistory stores recorded usage snapshots.
func (s *State) SetHistory(history []models.UsageSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = slices.Clone(history)
	s.touch()
}

// GetHistory returns a copy of the recorded usage snapshots.
func (s *State) GetHistory() []models.UsageSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// SetKeys replaces the key list and its summary.
func (s *State) SetKeys(keys []models.APIKey, summary apikeys.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = slices.Clone(keys)
	s.summary = summary
	s.touch()
}

// GetKeys returns a copy of the key list.
func (s *State) GetKeys() []models.APIKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.keys)
}

// GetKeySummary returns the key counts.
func (s *State) GetKeySummary() apikeys.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// SetKeyEvents stores the recent key lifecycle events.
func (s *State) SetKeyEvents(events []models.KeyEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = slices.Clone(events)
	s.touch()
}

// GetKeyEvents returns a copy of the recent key lifecycle events.
func (s *State) GetKeyEvents() []models.KeyEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// SetCatalog stores a resolved catalog.
func (s *State) SetCatalog(res catalog.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = &res
	s.touch()
}

// GetCatalog returns the latest catalog result, or nil.
func (s *State) GetCatalog() *catalog.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.ID == id
	})
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = slices.DeleteFunc(s.notifications, func(n Notification) bool {
		return n.IsExpired()
	})
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}

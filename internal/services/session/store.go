// Package session holds the authenticated session and persists it in a
// key/value store.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
)

// Fixed key names in the backing store.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// ErrEmptyToken is returned by SetSession when no token is given.
var ErrEmptyToken = errors.New("session token is empty")

// EventType defines the type of session event.
type EventType int

const (
	// EventSessionSet is emitted after a login replaced the session.
	EventSessionSet EventType = iota
	// EventSessionCleared is emitted after logout or invalidation.
	EventSessionCleared
	// EventSessionReloaded is emitted when the backing store changed externally.
	EventSessionReloaded
)

// String returns a readable event name.
func (t EventType) String() string {
	switch t {
	case EventSessionSet:
		return "set"
	case EventSessionCleared:
		return "cleared"
	case EventSessionReloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Event is a session lifecycle event.
type Event struct {
	Session *models.Session
	Type    EventType
}

// Store is the process-wide holder of the current session.
type Store struct {
	mu        sync.RWMutex
	kv        KVStore
	session   *models.Session
	eventChan chan Event
	now       func() time.Time
}

// New creates a store and hydrates it from kv. An expired token found in kv
// is cleared.
func New(kv KVStore) (*Store, error) {
	s := &Store{
		kv:        kv,
		eventChan: make(chan Event, 16),
		now:       time.Now,
	}
	if err := s.hydrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate() error {
	token, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}

	if !ok || token == "" {
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		return nil
	}

	if exp, ok := tokenExpiry(token); ok && !s.now().Before(exp) {
		logger.Info("stored session expired, clearing", "expired_at", exp)
		if err := s.kv.Delete(KeyToken, KeyUser); err != nil {
			return fmt.Errorf("failed to clear expired session: %w", err)
		}
		s.mu.Lock()
		s.session = nil
		s.mu.Unlock()
		return nil
	}

	var user models.Identity
	if raw, ok, err := s.kv.Get(KeyUser); err == nil && ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			logger.Warn("failed to parse stored user", "error", err)
		}
	}

	s.mu.Lock()
	s.session = &models.Session{Token: token, User: user}
	s.mu.Unlock()
	return nil
}

// Reload re-reads the backing store, e.g. after another process logged in.
func (s *Store) Reload() error {
	if err := s.hydrate(); err != nil {
		return err
	}
	s.sendEvent(Event{Type: EventSessionReloaded, Session: s.Session()})
	return nil
}

// SetSession replaces any existing session.
func (s *Store) SetSession(token string, user models.Identity) error {
	if token == "" {
		return ErrEmptyToken
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := s.kv.Set(KeyUser, string(data)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	if err := s.kv.Set(KeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	sess := &models.Session{Token: token, User: user}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventSessionSet, Session: s.Session()})
	return nil
}

// ClearSession removes the session. Safe to call with no active session.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	hadSession := s.session != nil
	s.session = nil
	s.mu.Unlock()

	if err := s.kv.Delete(KeyToken, KeyUser); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if hadSession {
		s.sendEvent(Event{Type: EventSessionCleared})
	}
	return nil
}

// CurrentToken returns the bearer token, if any.
func (s *Store) CurrentToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", false
	}
	return s.session.Token, true
}

// Identity returns the cached user identity, if any.
func (s *Store) Identity() (models.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return models.Identity{}, false
	}
	return s.session.User, true
}

// UpdateIdentity refreshes the cached identity without touching the token.
func (s *Store) UpdateIdentity(user models.Identity) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return nil
	}
	s.session.User = user
	s.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	return s.kv.Set(KeyUser, string(data))
}

// Session returns a copy of the current session, or nil.
func (s *Store) Session() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil
	}
	sess := *s.session
	return &sess
}

// IsAuthenticated reports whether a session is present.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.CurrentToken()
	return ok
}

// ExpiresAt returns the token's exp claim when the token is a JWT carrying
// one. Opaque tokens report false.
func (s *Store) ExpiresAt() (time.Time, bool) {
	token, ok := s.CurrentToken()
	if !ok {
		return time.Time{}, false
	}
	return tokenExpiry(token)
}

// Expired reports whether the current token carries an exp claim at or
// before now.
func (s *Store) Expired(now time.Time) bool {
	exp, ok := s.ExpiresAt()
	return ok && !now.Before(exp)
}

// Events returns the event channel for subscribing to session changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// tokenExpiry decodes the exp claim without verifying the signature. The
// server remains the authority on validity.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// sendEvent sends an event non-blocking, dropping the oldest when full.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

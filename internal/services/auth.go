package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
)

// Login validates creds, authenticates and stores the new session.
func (m *Manager) Login(ctx context.Context, creds models.Credentials) (*models.Session, error) {
	if err := validateForm(creds); err != nil {
		return nil, err
	}

	resp, err := m.client.Login(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return m.startSession(resp)
}

// Register validates reg, creates the account and stores its session.
func (m *Manager) Register(ctx context.Context, reg models.Registration) (*models.Session, error) {
	if err := validateForm(reg); err != nil {
		return nil, err
	}

	resp, err := m.client.Register(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return m.startSession(resp)
}

// ForgotPassword requests a password reset email.
func (m *Manager) ForgotPassword(ctx context.Context, reset models.PasswordReset) (string, error) {
	if err := validateForm(reset); err != nil {
		return "", err
	}

	msg, err := m.client.ForgotPassword(ctx, reset.Email)
	if err != nil {
		return "", fmt.Errorf("password reset failed: %w", err)
	}
	return msg, nil
}

func (m *Manager) startSession(resp models.AuthResponse) (*models.Session, error) {
	if err := m.store.SetSession(resp.Token, resp.User); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	sess := m.store.Session()
	logger.Info("logged in", "user", resp.User.Email)
	m.broadcast(SessionChangedEvent{Session: sess, Authenticated: true})
	return sess, nil
}

// Logout cancels in-flight requests and clears the session.
func (m *Manager) Logout() error {
	return m.endSession("Logged out")
}

func (m *Manager) endSession(reason string) error {
	m.tracker.CancelAll()
	m.resetState()

	if err := m.store.ClearSession(); err != nil {
		logger.Error("failed to clear session", "error", err)
		return fmt.Errorf("failed to clear session: %w", err)
	}

	logger.Info("session ended", "reason", reason)
	m.broadcast(SessionChangedEvent{Reason: reason})
	return nil
}

func (m *Manager) resetState() {
	m.keys.Reset()
	m.catalog.Reset()
	m.alerts.reset()
}

// LoadProfile refreshes the stored identity from the backend.
func (m *Manager) LoadProfile(ctx context.Context) (models.Identity, error) {
	user, err := m.client.Profile(ctx)
	if err != nil {
		return models.Identity{}, m.checkAuth(fmt.Errorf("failed to load profile: %w", err))
	}
	if err := m.store.UpdateIdentity(user); err != nil {
		logger.Warn("failed to store profile", "error", err)
	}
	return user, nil
}

// checkAuth ends the session when err is an authentication failure. err is
// returned unchanged.
func (m *Manager) checkAuth(err error) error {
	if err == nil || !errors.Is(err, gateway.ErrAuthentication) {
		return err
	}
	if m.store.IsAuthenticated() {
		_ = m.endSession("Session expired. Please log in again.")
	}
	return err
}

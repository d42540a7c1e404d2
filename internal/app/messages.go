package app

import (
	"time"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "usage", "keys", "catalog"
}

// AuthAction names the form that produced an AuthResultMsg.
type AuthAction string

// Auth actions.
const (
	AuthLogin    AuthAction = "login"
	AuthRegister AuthAction = "register"
)

// LoginMsg requests signing in.
type LoginMsg struct {
	Credentials models.Credentials
}

// RegisterMsg requests creating an account.
type RegisterMsg struct {
	Registration models.Registration
}

// ForgotPasswordMsg requests a password reset mail.
type ForgotPasswordMsg struct {
	Reset models.PasswordReset
}

// LogoutMsg requests ending the session.
type LogoutMsg struct{}

// AuthResultMsg carries the outcome of a login or registration.
type AuthResultMsg struct {
	Session *models.Session
	Error   error
	Action  AuthAction
}

// ForgotPasswordResultMsg carries the server's reply to a reset request.
type ForgotPasswordResultMsg struct {
	Error   error
	Message string
}

// SessionChangedMsg tells the tabs the signed-in user changed.
type SessionChangedMsg struct {
	Session       *models.Session
	Reason        string
	Authenticated bool
}

// ProfileLoadedMsg contains the refreshed identity of the signed-in user.
type ProfileLoadedMsg struct {
	Error    error
	Identity models.Identity
	Ticket   gateway.Ticket
}

// UsageLoadedMsg contains resolved analytics for the usage scope.
type UsageLoadedMsg struct {
	Result  usage.Result
	History []models.UsageSnapshot
	Ticket  gateway.Ticket
}

// InitialLoadMsg contains everything fetched right after sign-in.
type InitialLoadMsg struct {
	Error    error
	Snapshot services.Snapshot
	History  []models.UsageSnapshot
	Events   []models.KeyEvent
	Ticket   gateway.Ticket
}

// KeysLoadedMsg contains the listed API keys.
type KeysLoadedMsg struct {
	Error  error
	Keys   []models.APIKey
	Events []models.KeyEvent
	Ticket gateway.Ticket
}

// CatalogLoadedMsg contains a resolved catalog.
type CatalogLoadedMsg struct {
	Result catalog.Result
	Ticket gateway.Ticket
}

// CreateKeyMsg requests a new API key.
type CreateKeyMsg struct {
	Selection models.ModelSelection
}

// KeyCreatedMsg contains the result of a key creation.
type KeyCreatedMsg struct {
	Error error
	Key   models.APIKey
}

// RevokeKeyMsg requests revoking a key.
type RevokeKeyMsg struct {
	ID string
}

// KeyRevokedMsg contains the result of a revocation.
type KeyRevokedMsg struct {
	Error error
	Key   models.APIKey
	ID    string
}

// RegenerateKeyMsg requests rotating a key's secret.
type RegenerateKeyMsg struct {
	ID string
}

// RegenerateResultMsg contains the result of a regeneration request.
type RegenerateResultMsg struct {
	Error error
	ID    string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// CopyToClipboardMsg requests copying text to the system clipboard. Label
// names the copied value in the confirmation.
type CopyToClipboardMsg struct {
	Text  string
	Label string
}

// ClipboardResultMsg contains the result of a clipboard write.
type ClipboardResultMsg struct {
	Error error
	Label string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

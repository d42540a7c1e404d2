package app

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// HistoryRange is the snapshot window loaded with analytics.
	HistoryRange = models.TimeRange7Days

	// KeyEventLimit caps the key events shown on the keys tab.
	KeyEventLimit = 20
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialDataCmd fetches analytics, keys and the catalog together. It has
// its own scope so usage polls and refreshes do not cancel it.
func loadInitialDataCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ticket, ctx := mgr.Tracker().Begin(gateway.ScopeInitial)
		snap, err := mgr.RefreshAll(ctx)
		return InitialLoadMsg{
			Ticket:   ticket,
			Snapshot: snap,
			Error:    err,
			History:  mgr.UsageHistory(HistoryRange),
			Events:   mgr.KeyEvents(KeyEventLimit),
		}
	}
}

// loadUsageCmd resolves analytics in the usage scope.
func loadUsageCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ticket, ctx := mgr.Tracker().Begin(gateway.ScopeUsage)
		res := mgr.RefreshUsage(ctx)
		return UsageLoadedMsg{
			Ticket:  ticket,
			Result:  res,
			History: mgr.UsageHistory(HistoryRange),
		}
	}
}

// loadKeysCmd lists API keys in the keys scope.
func loadKeysCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ticket, ctx := mgr.Tracker().Begin(gateway.ScopeKeys)
		keys, err := mgr.LoadKeys(ctx)
		return KeysLoadedMsg{
			Ticket: ticket,
			Keys:   keys,
			Events: mgr.KeyEvents(KeyEventLimit),
			Error:  err,
		}
	}
}

// loadCatalogCmd resolves the model catalog in the catalog scope.
func loadCatalogCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ticket, ctx := mgr.Tracker().Begin(gateway.ScopeCatalog)
		return CatalogLoadedMsg{Ticket: ticket, Result: mgr.LoadCatalog(ctx)}
	}
}

// loadProfileCmd refreshes the signed-in identity in the profile scope.
func loadProfileCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		ticket, ctx := mgr.Tracker().Begin(gateway.ScopeProfile)
		user, err := mgr.LoadProfile(ctx)
		return ProfileLoadedMsg{Ticket: ticket, Identity: user, Error: err}
	}
}

// loginCmd signs in with creds.
func loginCmd(mgr *services.Manager, creds models.Credentials) tea.Cmd {
	return func() tea.Msg {
		sess, err := mgr.Login(context.Background(), creds)
		return AuthResultMsg{Action: AuthLogin, Session: sess, Error: err}
	}
}

// registerCmd creates an account and signs in.
func registerCmd(mgr *services.Manager, reg models.Registration) tea.Cmd {
	return func() tea.Msg {
		sess, err := mgr.Register(context.Background(), reg)
		return AuthResultMsg{Action: AuthRegister, Session: sess, Error: err}
	}
}

// forgotPasswordCmd requests a password reset mail.
func forgotPasswordCmd(mgr *services.Manager, reset models.PasswordReset) tea.Cmd {
	return func() tea.Msg {
		msg, err := mgr.ForgotPassword(context.Background(), reset)
		return ForgotPasswordResultMsg{Message: msg, Error: err}
	}
}

// logoutCmd ends the session. The manager broadcasts the change.
func logoutCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if err := mgr.Logout(); err != nil {
			return ErrorMsg{Error: err, Context: "logout"}
		}
		return nil
	}
}

// createKeyCmd creates a key for sel.
func createKeyCmd(mgr *services.Manager, sel models.ModelSelection) tea.Cmd {
	return func() tea.Msg {
		key, err := mgr.CreateKey(context.Background(), sel)
		return KeyCreatedMsg{Key: key, Error: err}
	}
}

// revokeKeyCmd revokes the key with id.
func revokeKeyCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		key, err := mgr.RevokeKey(context.Background(), id)
		return KeyRevokedMsg{ID: id, Key: key, Error: err}
	}
}

// regenerateKeyCmd asks to rotate the key with id.
func regenerateKeyCmd(mgr *services.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		return RegenerateResultMsg{ID: id, Error: mgr.RegenerateKey(id)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// copyToClipboardCmd writes text to the system clipboard and reports the
// outcome under label. The text itself never appears in the result.
func copyToClipboardCmd(text, label string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Label: label, Error: clipboard.WriteAll(text)}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// LoadInitialData returns a command that loads everything after sign-in.
func (c *Commands) LoadInitialData() tea.Cmd {
	return loadInitialDataCmd(c.manager)
}

// LoadUsage returns a command that resolves analytics.
func (c *Commands) LoadUsage() tea.Cmd {
	return loadUsageCmd(c.manager)
}

// LoadKeys returns a command that lists API keys.
func (c *Commands) LoadKeys() tea.Cmd {
	return loadKeysCmd(c.manager)
}

// LoadCatalog returns a command that resolves the catalog.
func (c *Commands) LoadCatalog() tea.Cmd {
	return loadCatalogCmd(c.manager)
}

// LoadProfile returns a command that refreshes the identity.
func (c *Commands) LoadProfile() tea.Cmd {
	return loadProfileCmd(c.manager)
}

// Login returns a command that signs in.
func (c *Commands) Login(creds models.Credentials) tea.Cmd {
	return loginCmd(c.manager, creds)
}

// Register returns a command that creates an account.
func (c *Commands) Register(reg models.Registration) tea.Cmd {
	return registerCmd(c.manager, reg)
}

// ForgotPassword returns a command that requests a reset mail.
func (c *Commands) ForgotPassword(reset models.PasswordReset) tea.Cmd {
	return forgotPasswordCmd(c.manager, reset)
}

// Logout returns a command that ends the session.
func (c *Commands) Logout() tea.Cmd {
	return logoutCmd(c.manager)
}

// CreateKey returns a command that creates an API key.
func (c *Commands) CreateKey(sel models.ModelSelection) tea.Cmd {
	return createKeyCmd(c.manager, sel)
}

// RevokeKey returns a command that revokes an API key.
func (c *Commands) RevokeKey(id string) tea.Cmd {
	return revokeKeyCmd(c.manager, id)
}

// RegenerateKey returns a command that asks to rotate an API key.
func (c *Commands) RegenerateKey(id string) tea.Cmd {
	return regenerateKeyCmd(c.manager, id)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

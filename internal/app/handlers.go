package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/apikeys"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
)

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.SessionChangedEvent:
		if e.Authenticated {
			return m.enterSession(e.Session)
		}
		return m.leaveSession(e.Reason)

	case services.UsageUpdatedEvent:
		if m.state.IsAuthenticated() {
			m.state.SetUsage(e.Result)
			m.state.SetHistory(e.History)
		}

	case services.KeysChangedEvent:
		if m.state.IsAuthenticated() {
			m.state.SetKeys(e.Keys, e.Summary)
		}

	case services.CatalogLoadedEvent:
		if m.state.IsAuthenticated() {
			m.state.SetCatalog(e.Result)
		}

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %s", e.Service, ErrorText(e.Error)))
	}

	return nil
}

// enterSession switches to the signed-in view. It is a no-op when a
// session is already shown, since both the auth result and the broadcast
// announce the same login.
func (m *Model) enterSession(sess *models.Session) tea.Cmd {
	wasAuthenticated := m.state.IsAuthenticated()
	m.state.SetSession(sess)
	if wasAuthenticated || sess == nil || m.services == nil {
		return nil
	}

	m.activeTab = TabAnalytics
	m.state.SetLoading(ResourceInitial, true)
	m.state.SetLoadingNotification("Loading...")
	return m.commands.LoadInitialData()
}

// leaveSession drops all account data and shows the login screen.
func (m *Model) leaveSession(reason string) tea.Cmd {
	if !m.state.IsAuthenticated() {
		return nil
	}

	m.state.SetSession(nil)
	m.state.ClearData()
	for _, r := range []string{ResourceInitial, ResourceUsage, ResourceKeys, ResourceCatalog} {
		m.state.SetLoading(r, false)
	}
	m.state.ClearLoadingNotification()
	m.activeTab = TabAnalytics
	m.showHelp = false

	if reason == "" {
		return nil
	}
	return notifyWarningCmd(reason)
}

func (m *Model) startAuth(cmd tea.Cmd) tea.Cmd {
	if m.services == nil {
		return nil
	}
	m.state.SetLoading(ResourceAuth, true)
	return cmd
}

func (m *Model) handleAuthResult(msg AuthResultMsg) []tea.Cmd {
	m.state.SetLoading(ResourceAuth, false)
	if msg.Error != nil {
		return nil
	}

	cmds := []tea.Cmd{notifySuccessCmd(fmt.Sprintf("Welcome, %s", msg.Session.User.DisplayName()))}
	if cmd := m.enterSession(msg.Session); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// accept reports whether a ticketed response may touch state.
func (m *Model) accept(ticket gateway.Ticket) bool {
	if m.services == nil {
		return true
	}
	tracker := m.services.Tracker()
	if !tracker.Current(ticket) {
		return false
	}
	tracker.Finish(ticket)
	return m.state.IsAuthenticated()
}

func (m *Model) finishLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleInitialLoad(msg InitialLoadMsg) []tea.Cmd {
	defer m.finishLoading(ResourceInitial)
	if !m.accept(msg.Ticket) || msg.Error != nil {
		return nil
	}

	snap := msg.Snapshot
	// A usage refresh that finished first is newer than this snapshot.
	fresh := true
	if cur := m.state.GetUsage(); cur != nil && cur.ResolvedAt.After(snap.Usage.ResolvedAt) {
		fresh = false
	}
	if fresh {
		m.state.SetUsage(snap.Usage)
		m.state.SetHistory(msg.History)
	}
	m.state.SetCatalog(snap.Catalog)
	m.state.SetKeyEvents(msg.Events)

	var cmds []tea.Cmd
	if snap.KeysErr != nil {
		cmds = append(cmds, notifyErrorCmd("Failed to load API keys: "+ErrorText(snap.KeysErr)))
	} else {
		m.state.SetKeys(snap.Keys, m.keySummary())
	}
	if !fresh {
		return cmds
	}
	if cmd := usageWarning(snap.Usage); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (m *Model) keySummary() apikeys.Summary {
	if m.services == nil {
		return apikeys.Summary{}
	}
	return m.services.KeySummary()
}

func usageWarning(res usage.Result) tea.Cmd {
	if res.Tier == usage.TierStatic {
		return notifyWarningCmd("Analytics unavailable, showing sample data")
	}
	return nil
}

func (m *Model) handleUsageLoaded(msg UsageLoadedMsg) []tea.Cmd {
	defer m.finishLoading(ResourceUsage)
	if !m.accept(msg.Ticket) || gateway.KindOf(msg.Result.Err) == gateway.KindCanceled {
		return nil
	}

	m.state.SetUsage(msg.Result)
	m.state.SetHistory(msg.History)
	if cmd := usageWarning(msg.Result); cmd != nil {
		return []tea.Cmd{cmd}
	}
	return nil
}

func (m *Model) handleKeysLoaded(msg KeysLoadedMsg) []tea.Cmd {
	defer m.finishLoading(ResourceKeys)
	if !m.accept(msg.Ticket) {
		return nil
	}
	if msg.Error != nil {
		if gateway.KindOf(msg.Error) == gateway.KindCanceled {
			return nil
		}
		return []tea.Cmd{notifyErrorCmd("Failed to load API keys: " + ErrorText(msg.Error))}
	}

	m.state.SetKeys(msg.Keys, m.keySummary())
	m.state.SetKeyEvents(msg.Events)
	return nil
}

func (m *Model) handleCatalogLoaded(msg CatalogLoadedMsg) []tea.Cmd {
	defer m.finishLoading(ResourceCatalog)
	if !m.accept(msg.Ticket) || gateway.KindOf(msg.Result.Err) == gateway.KindCanceled {
		return nil
	}

	m.state.SetCatalog(msg.Result)
	if msg.Result.Source == catalog.OriginStatic {
		return []tea.Cmd{notifyWarningCmd("Model catalog unavailable, showing defaults")}
	}
	return nil
}

func (m *Model) handleProfileLoaded(msg ProfileLoadedMsg) []tea.Cmd {
	if !m.accept(msg.Ticket) {
		return nil
	}
	if msg.Error != nil {
		if gateway.KindOf(msg.Error) == gateway.KindCanceled {
			return nil
		}
		return []tea.Cmd{notifyErrorCmd("Failed to load profile: " + ErrorText(msg.Error))}
	}

	if sess := m.state.GetSession(); sess != nil {
		updated := *sess
		updated.User = msg.Identity
		m.state.SetSession(&updated)
	}
	return []tea.Cmd{notifyInfoCmd("Profile refreshed")}
}

func (m *Model) handleKeyCreated(msg KeyCreatedMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd("Failed to create key: " + ErrorText(msg.Error))}
	}
	m.syncKeys()
	return []tea.Cmd{notifySuccessCmd("Created key " + msg.Key.Masked())}
}

func (m *Model) handleKeyRevoked(msg KeyRevokedMsg) []tea.Cmd {
	if msg.Error != nil {
		return []tea.Cmd{notifyErrorCmd("Failed to revoke key: " + ErrorText(msg.Error))}
	}
	m.syncKeys()
	return []tea.Cmd{notifySuccessCmd("Revoked key " + msg.Key.Masked())}
}

// syncKeys copies the manager's key set and recent events into state.
func (m *Model) syncKeys() {
	if m.services == nil || !m.state.IsAuthenticated() {
		return
	}
	m.state.SetKeys(m.services.Keys(), m.services.KeySummary())
	m.state.SetKeyEvents(m.services.KeyEvents(KeyEventLimit))
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) []tea.Cmd {
	var cmds []tea.Cmd
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	if msg.Duration > 0 {
		cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
	}
	return cmds
}

func (m *Model) handleStartLoading(msg StartLoadingMsg) {
	m.state.SetLoading(msg.Resource, true)
	m.state.SetLoadingNotification("Refreshing...")
}

func (m *Model) handleStopLoading(msg StopLoadingMsg) {
	m.finishLoading(msg.Resource)
}

func (m *Model) handleRefresh(msg RefreshMsg) []tea.Cmd {
	if m.services == nil || !m.state.IsAuthenticated() {
		return nil
	}

	switch msg.Resource {
	case "all":
		m.handleStartLoading(StartLoadingMsg{Resource: ResourceInitial})
		return []tea.Cmd{m.commands.LoadInitialData()}
	case ResourceUsage:
		m.handleStartLoading(StartLoadingMsg{Resource: ResourceUsage})
		return []tea.Cmd{m.commands.LoadUsage()}
	case ResourceKeys:
		m.handleStartLoading(StartLoadingMsg{Resource: ResourceKeys})
		return []tea.Cmd{m.commands.LoadKeys()}
	case ResourceCatalog:
		m.handleStartLoading(StartLoadingMsg{Resource: ResourceCatalog})
		return []tea.Cmd{m.commands.LoadCatalog()}
	case "profile":
		return []tea.Cmd{m.commands.LoadProfile()}
	}
	return nil
}

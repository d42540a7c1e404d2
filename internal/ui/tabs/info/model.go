// Package info provides the account and configuration tab.
package info

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/config"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
)

type keyMap struct {
	Refresh key.Binding
	Copy    key.Binding
	Compact key.Binding
	Logout  key.Binding
	Up      key.Binding
	Down    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh profile"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy API URL"),
		),
		Compact: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "compact history"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// compactedMsg reports the result of a history compaction.
type compactedMsg struct {
	err     error
	removed int64
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	config   *config.Config
	services *services.Manager
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates the info tab. cfg and svc may be nil.
func New(state *app.State, cfg *config.Config, svc *services.Manager) *Model {
	return &Model{
		state:    state,
		config:   cfg,
		services: svc,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case compactedMsg:
		if msg.err != nil {
			return m, notify(app.NotificationError, "Compaction failed: "+msg.err.Error())
		}
		return m, notify(app.NotificationSuccess, compactionSummary(msg.removed))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Logout):
			return m, func() tea.Msg { return app.LogoutMsg{} }

		case key.Matches(msg, m.keys.Copy):
			url := m.baseURL()
			if url == "" {
				return m, nil
			}
			return m, func() tea.Msg {
				return app.CopyToClipboardMsg{Text: url, Label: "API URL"}
			}

		case key.Matches(msg, m.keys.Compact):
			if m.services == nil {
				return m, nil
			}
			svc := m.services
			return m, func() tea.Msg {
				n, err := svc.CompactHistory()
				return compactedMsg{removed: n, err: err}
			}
		}

		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

func notify(t app.NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return app.AddNotificationMsg{Type: t, Message: message, Duration: app.DefaultNotificationDuration}
	}
}

func (m *Model) baseURL() string {
	if m.services != nil {
		return m.services.BaseURL()
	}
	if m.config != nil {
		return m.config.APIBaseURL
	}
	return ""
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Copy, m.keys.Logout}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Copy, m.keys.Compact},
		{m.keys.Refresh, m.keys.Logout},
	}
}

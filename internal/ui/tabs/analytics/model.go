// Package analytics provides the usage analytics tab.
package analytics

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
)

type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*40, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// historyLoadedMsg carries snapshots for a time range other than the default.
type historyLoadedMsg struct {
	history   []models.UsageSnapshot
	timeRange models.TimeRange
}

type keyMap struct {
	ToggleRange key.Binding
	Refresh     key.Binding
	Up          key.Binding
	Down        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle history range"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the analytics tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	keys     keyMap
	viewport viewport.Model
	spinner  components.LoadingSpinner
	quotaBar components.QuotaBar

	timeRange    models.TimeRange
	rangeHistory []models.UsageSnapshot
	seenVersion  uint64
	frame        int
	width        int
	height       int
	now          func() time.Time
}

// New creates the analytics tab. svc may be nil.
func New(state *app.State, svc *services.Manager) *Model {
	bar := components.NewQuotaBar()
	bar.SetLabel("Monthly quota")
	return &Model{
		state:     state,
		services:  svc,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		spinner:   components.NewSpinner("Loading analytics..."),
		quotaBar:  bar,
		timeRange: app.HistoryRange,
		now:       time.Now,
	}
}

// Init starts the loading animation.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Start("Loading analytics..."), shimmerTickCmd())
}

// Update handles messages for the analytics tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++
		if m.state.IsInitialLoading() || m.state.IsLoading(app.ResourceUsage) {
			cmds = append(cmds, shimmerTickCmd())
		}

	case app.StartLoadingMsg, app.RefreshMsg:
		cmds = append(cmds, shimmerTickCmd())

	case historyLoadedMsg:
		if msg.timeRange == m.timeRange {
			m.rangeHistory = msg.history
		}

	case components.AnimationTickMsg:
		var cmd tea.Cmd
		m.quotaBar, cmd = m.quotaBar.Update(msg)
		cmds = append(cmds, cmd)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))
	}

	cmds = append(cmds, m.sync())
	return m, tea.Batch(cmds...)
}

// sync picks up new analytics from the shared state.
func (m *Model) sync() tea.Cmd {
	v := m.state.Version()
	if v == m.seenVersion {
		return nil
	}
	m.seenVersion = v

	res := m.state.GetUsage()
	if res == nil {
		return nil
	}
	m.spinner.Stop()

	var cmds []tea.Cmd
	if m.timeRange != app.HistoryRange {
		cmds = append(cmds, m.loadHistoryCmd(m.timeRange))
	}
	if pct := float64(res.Stats.Percent()); pct != m.quotaBar.Percent() {
		cmds = append(cmds, m.quotaBar.SetPercent(pct))
	}
	return tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		m.rangeHistory = nil
		return m.loadHistoryCmd(m.timeRange)
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

// loadHistoryCmd reads snapshots for r from the local cache. The default
// range comes with every analytics refresh and needs no extra read.
func (m *Model) loadHistoryCmd(r models.TimeRange) tea.Cmd {
	if m.services == nil || r == app.HistoryRange {
		return nil
	}
	svc := m.services
	return func() tea.Msg {
		return historyLoadedMsg{timeRange: r, history: svc.UsageHistory(r)}
	}
}

// history returns the snapshots for the selected range.
func (m *Model) history() []models.UsageSnapshot {
	if m.timeRange == app.HistoryRange {
		return m.state.GetHistory()
	}
	return m.rangeHistory
}

// SetSize sets the available size for the analytics tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleRange, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}

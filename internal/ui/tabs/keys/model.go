// Package keys provides the API key management tab.
package keys

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// mode is the modal state of the tab.
type mode int

const (
	modeBrowse mode = iota
	modePickModel
	modeConfirmRevoke
)

// choicesLoadedMsg carries the public listing fetched for the model picker.
type choicesLoadedMsg struct {
	err     error
	choices []models.CatalogModel
}

type keyMap struct {
	Create     key.Binding
	Revoke     key.Binding
	Regenerate key.Binding
	Copy       key.Binding
	Refresh    key.Binding
	Enter      key.Binding
	Escape     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Create: key.NewBinding(
			key.WithKeys("n", "a"),
			key.WithHelp("n", "new key"),
		),
		Revoke: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "revoke"),
		),
		Regenerate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "regenerate"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy secret"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the API keys tab state.
type Model struct {
	state    *app.State
	services *services.Manager
	table    table.Model
	picker   table.Model
	spinner  components.LoadingSpinner
	keys     keyMap

	choices     []models.CatalogModel
	revokeID    string
	mode        mode
	seenVersion uint64
	width       int
	height      int
}

// New creates the API keys tab. svc may be nil.
func New(state *app.State, svc *services.Manager) *Model {
	t := table.New(
		table.WithColumns(keyColumns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	p := table.New(
		table.WithColumns([]table.Column{
			{Title: "Model", Width: 28},
			{Title: "Category", Width: 20},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	p.SetStyles(tableStyles())

	return &Model{
		state:    state,
		services: svc,
		table:    t,
		picker:   p,
		spinner:  components.NewSpinner("Loading API keys..."),
		keys:     defaultKeyMap(),
	}
}

func tableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	return s
}

func keyColumns(width int) []table.Column {
	secretWidth := min(max(width-78, 18), 24)
	return []table.Column{
		{Title: "ID", Width: 10},
		{Title: "Secret", Width: secretWidth},
		{Title: "Status", Width: 9},
		{Title: "Model", Width: 18},
		{Title: "Created", Width: 12},
		{Title: "Last used", Width: 14},
	}
}

// Init initializes the keys tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the keys tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	m.sync()

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.mode {
		case modePickModel:
			return m, m.updatePicker(keyMsg)
		case modeConfirmRevoke:
			return m, m.updateConfirm(keyMsg)
		default:
			return m, m.updateBrowse(keyMsg)
		}
	}

	switch msg := msg.(type) {
	case choicesLoadedMsg:
		return m, m.openPicker(msg)
	case app.SessionChangedMsg:
		m.mode = modeBrowse
		m.revokeID = ""
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Create):
		return m.startCreate()

	case key.Matches(msg, m.keys.Revoke):
		k, ok := m.selectedKey()
		if !ok {
			return nil
		}
		if !k.IsActive() {
			return notify(app.NotificationWarning, "Key "+k.Masked()+" is already revoked")
		}
		m.revokeID = k.ID
		m.mode = modeConfirmRevoke
		return nil

	case key.Matches(msg, m.keys.Regenerate):
		k, ok := m.selectedKey()
		if !ok {
			return nil
		}
		id := k.ID
		return func() tea.Msg { return app.RegenerateKeyMsg{ID: id} }

	case key.Matches(msg, m.keys.Copy):
		k, ok := m.selectedKey()
		if !ok || k.Secret == "" {
			return nil
		}
		return func() tea.Msg {
			return app.CopyToClipboardMsg{Text: k.Secret, Label: "key " + k.Masked()}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

// startCreate fetches the public model listing when keys must be scoped to a
// model, and creates an unscoped key otherwise.
func (m *Model) startCreate() tea.Cmd {
	if m.services == nil || !m.services.ScopedKeys() {
		return createKey(models.ModelSelection{})
	}

	svc := m.services
	return func() tea.Msg {
		list, err := svc.ModelChoices(context.Background())
		return choicesLoadedMsg{choices: list.Models(), err: err}
	}
}

// openPicker shows the fetched listing. An empty listing means keys cannot
// be bound to anything, so the key is created unscoped.
func (m *Model) openPicker(msg choicesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		return notify(app.NotificationError, "Could not load models: "+app.ErrorText(msg.err))
	}
	if len(msg.choices) == 0 {
		return createKey(models.ModelSelection{})
	}

	m.choices = msg.choices
	rows := make([]table.Row, 0, len(m.choices))
	for _, c := range m.choices {
		rows = append(rows, table.Row{c.Name, c.Category})
	}
	m.picker.SetRows(rows)
	m.picker.SetCursor(0)
	m.mode = modePickModel
	return nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeBrowse
		return nil
	case key.Matches(msg, m.keys.Enter):
		m.mode = modeBrowse
		i := m.picker.Cursor()
		if i < 0 || i >= len(m.choices) {
			return nil
		}
		return createKey(models.ModelSelection{ModelID: m.choices[i].ID})
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return cmd
}

func (m *Model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		id := m.revokeID
		m.mode = modeBrowse
		m.revokeID = ""
		return func() tea.Msg { return app.RevokeKeyMsg{ID: id} }
	case "n", "N", "esc":
		m.mode = modeBrowse
		m.revokeID = ""
	}
	return nil
}

func createKey(sel models.ModelSelection) tea.Cmd {
	return func() tea.Msg { return app.CreateKeyMsg{Selection: sel} }
}

func notify(t app.NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return app.AddNotificationMsg{Type: t, Message: message, Duration: app.DefaultNotificationDuration}
	}
}

// selectedKey returns the key under the table cursor.
func (m *Model) selectedKey() (models.APIKey, bool) {
	keys := m.state.GetKeys()
	i := m.table.Cursor()
	if i < 0 || i >= len(keys) {
		return models.APIKey{}, false
	}
	return keys[i], true
}

// sync rebuilds the table rows when shared state changed.
func (m *Model) sync() {
	v := m.state.Version()
	if v == m.seenVersion {
		return
	}
	m.seenVersion = v

	keys := m.state.GetKeys()
	rows := make([]table.Row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, keyRow(k))
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

func keyRow(k models.APIKey) table.Row {
	id := k.ID
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	model := k.ModelID
	if model == "" {
		model = "any"
	}
	created := "-"
	if !k.CreatedAt.IsZero() {
		created = k.CreatedAt.Format("2006-01-02")
	}
	lastUsed := "never"
	if k.LastUsedAt != nil {
		lastUsed = k.LastUsedAt.Format("Jan 2 15:04")
	}
	return table.Row{id, k.Masked(), k.Status.String(), model, created, lastUsed}
}

// CapturingInput reports whether a picker or confirmation is open.
func (m *Model) CapturingInput() bool {
	return m.mode != modeBrowse
}

// SetSize sets the available size for the keys tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-14, 3))
	m.table.SetColumns(keyColumns(width))
	m.picker.SetHeight(max(min(height-12, 10), 3))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	switch m.mode {
	case modePickModel:
		return []key.Binding{m.keys.Enter, m.keys.Escape}
	case modeConfirmRevoke:
		return []key.Binding{
			key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
			m.keys.Escape,
		}
	}
	return []key.Binding{m.keys.Create, m.keys.Revoke, m.keys.Regenerate}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Create, m.keys.Revoke},
		{m.keys.Regenerate, m.keys.Copy},
		{m.keys.Refresh},
	}
}

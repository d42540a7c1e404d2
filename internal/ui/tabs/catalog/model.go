// Package catalog provides the model catalog tab.
package catalog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

type keyMap struct {
	Filter    key.Binding
	CreateKey key.Binding
	Refresh   key.Binding
	Escape    key.Binding
	Up        key.Binding
	Down      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		CreateKey: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create key for model"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
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

// Model represents the catalog tab state.
type Model struct {
	state   *app.State
	table   table.Model
	filter  textinput.Model
	spinner components.LoadingSpinner
	keys    keyMap

	visible     []models.CatalogModel
	filtering   bool
	seenVersion uint64
	seenFilter  string
	width       int
	height      int
}

// New creates the catalog tab.
func New(state *app.State) *Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
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
	t.SetStyles(s)

	f := textinput.New()
	f.Placeholder = "name or category"
	f.Prompt = "/ "
	f.CharLimit = 60
	f.Width = 30

	return &Model{
		state:   state,
		table:   t,
		filter:  f,
		spinner: components.NewSpinner("Loading models..."),
		keys:    defaultKeyMap(),
	}
}

func columns(width int) []table.Column {
	nameWidth := min(max(width-60, 20), 36)
	return []table.Column{
		{Title: "Model", Width: nameWidth},
		{Title: "Category", Width: 20},
		{Title: "Rating", Width: 8},
		{Title: "Last used", Width: 12},
	}
}

// Init initializes the catalog tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the catalog tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	m.sync()

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.filtering {
		return m, m.updateFilter(keyMsg)
	}

	switch {
	case key.Matches(keyMsg, m.keys.Filter):
		m.filtering = true
		m.filter.Focus()
		return m, textinput.Blink

	case key.Matches(keyMsg, m.keys.Escape):
		m.filter.SetValue("")
		m.sync()
		return m, nil

	case key.Matches(keyMsg, m.keys.CreateKey):
		sel, ok := m.Selected()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return app.CreateKeyMsg{Selection: models.ModelSelection{ModelID: sel.ID}}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(keyMsg)
	return m, cmd
}

func (m *Model) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.filtering = false
		m.filter.Blur()
		return nil
	case "esc":
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.sync()
		return nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.sync()
	return cmd
}

// sync rebuilds the rows when the catalog or the filter changed.
func (m *Model) sync() {
	v := m.state.Version()
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	if v == m.seenVersion && q == m.seenFilter {
		return
	}
	m.seenVersion = v
	m.seenFilter = q

	res := m.state.GetCatalog()
	if res == nil {
		m.visible = nil
		m.table.SetRows(nil)
		return
	}

	m.visible = lo.Filter(res.Catalog.Models(), func(c models.CatalogModel, _ int) bool {
		return q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Category), q)
	})

	rows := lo.Map(m.visible, func(c models.CatalogModel, _ int) table.Row {
		rating := "-"
		if c.Rating > 0 {
			rating = fmt.Sprintf("★ %.1f", c.Rating)
		}
		lastUsed := "-"
		if !c.LastUsed.IsZero() {
			lastUsed = c.LastUsed.Format("2006-01-02")
		}
		return table.Row{c.Name, c.Category, rating, lastUsed}
	})
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the model under the cursor.
func (m *Model) Selected() (models.CatalogModel, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return models.CatalogModel{}, false
	}
	return m.visible[i], true
}

// CapturingInput reports whether the filter is being edited.
func (m *Model) CapturingInput() bool {
	return m.filtering
}

// SetSize sets the available size for the catalog tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-16, 3))
	m.table.SetColumns(columns(width))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.filtering {
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
			m.keys.Escape,
		}
	}
	return []key.Binding{m.keys.Filter, m.keys.CreateKey, m.keys.Refresh}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Filter, m.keys.Escape},
		{m.keys.CreateKey, m.keys.Refresh},
	}
}

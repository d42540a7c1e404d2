package keys

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// View renders the keys tab.
func (m *Model) View() string {
	m.sync()

	if m.state.IsInitialLoading() || (m.state.IsLoading(app.ResourceKeys) && len(m.state.GetKeys()) == 0) {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	sections := []string{m.renderTitle()}

	switch m.mode {
	case modePickModel:
		sections = append(sections, m.renderPicker())
	case modeConfirmRevoke:
		sections = append(sections, m.renderConfirm(), m.renderTable())
	default:
		sections = append(sections, m.renderTable())
	}

	sections = append(sections, m.renderEvents())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("API Keys")

	s := m.state.GetKeySummary()
	subtitle := fmt.Sprintf("%s · %s · %s",
		styles.HelpStyle.Render(fmt.Sprintf("%d total", s.Total)),
		styles.KeyActiveStyle.Render(fmt.Sprintf("%d active", s.Active)),
		styles.HelpStyle.Render(fmt.Sprintf("%d revoked", s.Inactive)),
	)
	if m.services != nil && m.services.ScopedKeys() {
		subtitle += styles.InfoTextStyle.Render("  keys are scoped to a model")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)

	if len(m.state.GetKeys()) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Center,
			"",
			styles.SubTitleStyle.Render("No API Keys"),
			"",
			styles.HelpStyle.Render("Create a key to call marketplace models."),
			"",
			styles.InfoTextStyle.Render("Press 'n' to create a new key"),
			"",
		)
		return styles.CardStyle.Width(cardWidth).Render(content)
	}

	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

func (m *Model) renderPicker() string {
	cardWidth := min(max(m.width-10, 50), 80)
	rows := []string{
		styles.CardTitleStyle.Render("Choose a model for the new key"),
		m.picker.View(),
		"",
	}
	if i := m.picker.Cursor(); i >= 0 && i < len(m.choices) && m.choices[i].Description != "" {
		rows = append(rows, styles.HelpStyle.Width(cardWidth-6).Render(m.choices[i].Description), "")
	}
	rows = append(rows, styles.HelpStyle.Render("enter create · esc cancel"))
	return styles.FocusedBorderStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderConfirm() string {
	masked := m.revokeID
	for _, k := range m.state.GetKeys() {
		if k.ID == m.revokeID {
			masked = k.Masked()
			break
		}
	}
	msg := fmt.Sprintf("Revoke key %s? Revoked keys stop working immediately. %s",
		lipgloss.NewStyle().Bold(true).Render(masked),
		styles.HelpKeyStyle.Render("[y/n]"),
	)
	return styles.ModalContentStyle.Render(styles.WarningTextStyle.Render(msg)) + "\n"
}

func (m *Model) renderEvents() string {
	events := m.state.GetKeyEvents()
	if len(events) == 0 {
		return ""
	}

	lines := []string{styles.SubTitleStyle.Render("Recent activity")}
	for _, e := range events[:min(len(events), 5)] {
		lines = append(lines, eventLine(e))
	}
	return strings.Join(lines, "\n")
}

func eventLine(e models.KeyEvent) string {
	icon := styles.SuccessTextStyle.Render("+")
	verb := "created"
	if e.Type == models.KeyEventRevoked {
		icon = styles.ErrorTextStyle.Render("-")
		verb = "revoked"
	}
	model := ""
	if e.ModelID != "" {
		model = styles.HelpStyle.Render(" for " + e.ModelID)
	}
	return fmt.Sprintf("  %s %s %s%s %s",
		icon, e.Masked, verb, model,
		styles.HelpStyle.Render(humanize.Time(e.Timestamp)),
	)
}

package login

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// View renders the active form centred on screen.
func (m *Model) View() string {
	rows := []string{
		styles.TitleStyle.Render(m.mode.title()),
		"",
	}

	for i, f := range fields[m.mode] {
		label := styles.BlurredStyle.Render(fieldLabels[f])
		if i == m.focus {
			label = styles.FocusedStyle.Render(fieldLabels[f])
		}
		rows = append(rows, label, m.inputs[f].View(), "")
	}

	switch {
	case m.submitting:
		rows = append(rows, m.spinner.ViewWithLabel())
	case m.err != "":
		rows = append(rows, styles.ErrorTextStyle.Render(m.err))
	case m.notice != "":
		rows = append(rows, styles.SuccessTextStyle.Render(m.notice))
	}

	rows = append(rows, "", styles.HelpStyle.Render(m.hint()))

	panel := styles.FormPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	if m.width == 0 || m.height == 0 {
		return panel
	}
	return styles.CenterBoth(panel, m.width, m.height)
}

func (m *Model) hint() string {
	switch m.mode {
	case modeRegister:
		return "enter: create account · esc: back to sign in"
	case modeForgot:
		return "enter: send reset link · esc: back to sign in"
	default:
		return "enter: sign in · ctrl+r: register · ctrl+f: forgot password"
	}
}

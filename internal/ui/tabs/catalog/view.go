package catalog

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	catalogsvc "github.com/JAYANTJOSHI001/vertex-ai/internal/services/catalog"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// View renders the catalog tab.
func (m *Model) View() string {
	m.sync()

	res := m.state.GetCatalog()
	if res == nil {
		if m.state.IsInitialLoading() || m.state.IsLoading(app.ResourceCatalog) {
			return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
		}
		return styles.CenterBoth(styles.HelpStyle.Render("No catalog loaded. Press r to fetch models."), m.width, m.height)
	}

	sections := []string{m.renderTitle(res)}
	if m.filtering || m.filter.Value() != "" {
		sections = append(sections, m.filter.View(), "")
	}
	sections = append(sections, m.renderTable(), m.renderDetail())

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle(res *catalogsvc.Result) string {
	title := styles.TitleStyle.Render("Model Catalog")

	origin := styles.InfoTextStyle.Render(res.Source.String())
	if res.Source == catalogsvc.OriginStatic {
		origin = styles.WarningTextStyle.Render(res.Source.String() + ", showing built-in models")
	}
	subtitle := fmt.Sprintf("%s  %s",
		styles.HelpStyle.Render(fmt.Sprintf("%d of %d models", len(m.visible), res.Catalog.Len())),
		origin,
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderTable() string {
	cardWidth := max(m.width-6, 60)
	if len(m.visible) == 0 {
		return styles.CardStyle.Width(cardWidth).Render(styles.HelpStyle.Render("No models match the filter"))
	}
	return styles.CardStyle.Width(cardWidth).Render(m.table.View())
}

func (m *Model) renderDetail() string {
	sel, ok := m.Selected()
	if !ok {
		return ""
	}

	lines := []string{styles.CardTitleStyle.Render(sel.Name)}
	if sel.Description != "" {
		lines = append(lines, styles.HelpDescStyle.Width(max(m.width-10, 30)).Render(sel.Description))
	}
	lines = append(lines, styles.HelpStyle.Render("id "+sel.ID))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

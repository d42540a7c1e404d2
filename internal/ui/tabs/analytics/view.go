package analytics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/app"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/gateway"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/projection"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/services/usage"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/components"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// View renders the analytics tab.
func (m *Model) View() string {
	res := m.state.GetUsage()
	if res == nil {
		if m.state.IsInitialLoading() || m.state.IsLoading(app.ResourceUsage) {
			return m.renderLoading()
		}
		return m.renderEmpty()
	}

	cardWidth := max(m.width-6, 40)

	sections := []string{
		m.renderTitle(res),
		m.renderStatCards(res),
		m.renderQuota(res, cardWidth),
		m.renderDaily(res, cardWidth),
		m.renderRanking(res, cardWidth),
		m.renderHistory(cardWidth),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
}

func (m *Model) renderEmpty() string {
	icon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
	msg := fmt.Sprintf("%s %s\n\n%s",
		icon,
		styles.HelpStyle.Render("No analytics yet"),
		styles.InfoTextStyle.Render("╰─▶ press r to load usage"),
	)
	return styles.CenterBoth(msg, m.width, m.height)
}

func (m *Model) renderTitle(res *usage.Result) string {
	title := styles.TitleStyle.Render("Usage Analytics")

	tier := res.Tier.String()
	badge := styles.GetTierStyle(tier).Render("● " + tier)

	updated := ""
	if !res.ResolvedAt.IsZero() {
		updated = styles.HelpStyle.Render("updated " + res.ResolvedAt.Format("15:04:05"))
	}

	subtitle := fmt.Sprintf("%s  %s", badge, updated)
	lines := []string{title, subtitle}
	if res.Err != nil {
		lines = append(lines, styles.WarningTextStyle.Render("⚠ "+usageNotice(res)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, append(lines, "")...)
}

// usageNotice is the one-line warning shown above degraded analytics.
func usageNotice(res *usage.Result) string {
	const fallback = "Failed to load usage data"
	var gerr *gateway.Error
	if res.Tier == usage.TierStatic || !errors.As(res.Err, &gerr) {
		return fallback
	}
	msg, _, _ := strings.Cut(gateway.UserMessage(gerr), "\n")
	if msg == "" {
		return fallback
	}
	return msg
}

func (m *Model) renderStatCards(res *usage.Result) string {
	s := res.Stats

	active := fmt.Sprintf("%d", s.ActiveModels)
	if res.ActiveModelsEstimated {
		active += styles.HelpStyle.Render(" (est.)")
	}

	pct := s.Percent()
	quota := fmt.Sprintf("%s / %s %s",
		formatCount(s.QuotaUsed),
		formatCount(s.QuotaTotal),
		styles.GetQuotaStyle(pct).Render(fmt.Sprintf("(%d%%)", pct)),
	)

	cards := []string{
		statCard("Today's calls", formatCount(s.TodayCalls)),
		statCard("Quota used", quota),
		statCard("Active models", active),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n"
}

func statCard(label, value string) string {
	return styles.StatCardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		styles.StatLabelStyle.Render(label),
		styles.StatValueStyle.Render(value),
	))
}

func (m *Model) renderQuota(res *usage.Result, width int) string {
	lines := []string{
		cardTitle("◈", "Monthly Quota"),
		"",
	}
	if m.state.IsLoading(app.ResourceUsage) && m.quotaBar.Percent() == 0 {
		lines = append(lines, components.SimpleQuotaBarLoading("Used", width-6, m.frame))
	} else {
		lines = append(lines, m.quotaBar.View(width-6))
	}
	lines = append(lines, components.RenderMonthBar(m.now(), "Resets in", width-6))

	remaining := max(res.Stats.QuotaTotal-res.Stats.QuotaUsed, 0)
	lines = append(lines, "", styles.HelpStyle.Render(fmt.Sprintf("%s calls remaining this month", formatCount(remaining))))
	if outlook := m.renderOutlook(res); outlook != "" {
		lines = append(lines, outlook)
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderOutlook projects the current month's burn rate to the reset.
func (m *Model) renderOutlook(res *usage.Result) string {
	p := projection.Calculate(m.state.GetHistory(), res.Stats, m.now())

	switch p.Status {
	case projection.StatusUnknown:
		return ""
	case projection.StatusSafe:
		if p.Rate <= 0 {
			return styles.SuccessTextStyle.Render("On track: no new calls recorded")
		}
		return styles.SuccessTextStyle.Render(fmt.Sprintf("On track: ~%s calls by reset (%s confidence)",
			formatCount(p.ProjectedUsed), p.Confidence))
	default:
		style := styles.WarningTextStyle
		if p.Status == projection.StatusCritical {
			style = styles.ErrorTextStyle
		}
		if p.Used >= p.Total {
			return style.Render("Quota exhausted until reset")
		}
		return style.Render(fmt.Sprintf("At %.0f calls/h the quota runs out %s (%s confidence)",
			p.Rate, humanize.Time(p.DepleteAt), p.Confidence))
	}
}

func (m *Model) renderDaily(res *usage.Result, width int) string {
	lines := []string{
		cardTitle("◎", "Daily Calls"),
		"",
		components.RenderDailyCalls(res.Buckets, max(width-20, 28), 6),
		"",
		styles.HelpStyle.Render("Weekly pattern  ") + components.RenderWeeklyPattern(res.Buckets),
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderRanking(res *usage.Result, width int) string {
	lines := []string{
		cardTitle("▲", "Top Models"),
		"",
		components.RenderModelRanking(res.Models, width-6),
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderHistory(width int) string {
	history := m.history()

	header := fmt.Sprintf("%s  %s",
		cardTitle("◷", "Quota History"),
		styles.HelpStyle.Render("["+m.timeRange.String()+"] t to change"),
	)
	lines := []string{header, ""}

	if len(history) == 0 {
		lines = append(lines, styles.HelpStyle.Render("No snapshots recorded for this range"))
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	percents := components.HistorySeries(history, models.UsageSnapshot.Percent)
	lines = append(lines,
		components.RenderQuotaSparkline(history, width-6),
		"",
		components.RenderLineChart(percents, max(width-20, 20), 5, "quota used %"),
		"",
		m.renderHistorySummary(history),
	)
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Model) renderHistorySummary(history []models.UsageSnapshot) string {
	peak := lo.MaxBy(history, func(a, b models.UsageSnapshot) bool {
		return a.TodayCalls > b.TodayCalls
	})
	avg := lo.SumBy(history, func(s models.UsageSnapshot) int { return s.TodayCalls }) / len(history)
	tiers := lo.CountValuesBy(history, func(s models.UsageSnapshot) string { return s.Tier })

	var tierParts []string
	for _, t := range []string{"live", "derived", "offline"} {
		if n := tiers[t]; n > 0 {
			tierParts = append(tierParts, styles.GetTierStyle(t).Render(fmt.Sprintf("%s %d", t, n)))
		}
	}

	return fmt.Sprintf("%d snapshots · peak %s calls (%s) · avg %s · %s",
		len(history),
		formatCount(peak.TodayCalls),
		peak.Timestamp.Format("Jan 2"),
		formatCount(avg),
		strings.Join(tierParts, " "),
	)
}

func cardTitle(icon, title string) string {
	return fmt.Sprintf("%s %s",
		lipgloss.NewStyle().Foreground(styles.Primary).Render(icon),
		styles.CardTitleStyle.Render(title),
	)
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

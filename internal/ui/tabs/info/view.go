package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderAccountCard(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Account, configuration and build information")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

func (m *Model) renderAccountCard() string {
	rows := []string{styles.CardTitleStyle.Render("Account"), ""}

	sess := m.state.GetSession()
	if sess == nil {
		rows = append(rows, styles.HelpStyle.Render("Not signed in"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	user := sess.User
	rows = append(rows,
		renderRow("Name", user.DisplayName()),
		renderRow("Email", orDash(user.Email)),
		renderRow("Account type", orDash(user.Type)),
		renderRow("User ID", orDash(user.ID)),
		renderRow("Session", m.expiry()),
	)

	if m.services != nil {
		s := m.state.GetKeySummary()
		rows = append(rows, renderRow("API keys", fmt.Sprintf("%d active of %d", s.Active, s.Total)))
	}

	rows = append(rows, "", styles.HelpStyle.Render("Press 'L' to log out"))
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// expiry describes when the session token expires.
func (m *Model) expiry() string {
	if m.services == nil {
		return "active"
	}
	exp, ok := m.services.SessionExpiresAt()
	if !ok {
		return "active, no expiry"
	}
	if time.Until(exp) <= 0 {
		return styles.ErrorTextStyle.Render("expired " + humanize.Time(exp))
	}
	return fmt.Sprintf("expires %s (%s)", humanize.Time(exp), exp.Local().Format("Jan 2 15:04"))
}

func (m *Model) renderConfigCard() string {
	rows := []string{styles.CardTitleStyle.Render("Configuration"), ""}

	if m.config == nil {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	sessionPath := m.config.SessionPath
	if m.services != nil {
		sessionPath = m.services.SessionPath()
	}
	if sessionPath == "" {
		sessionPath = "in memory"
	}

	scoped := "no"
	if m.config.ScopedKeys {
		scoped = "yes"
	}

	rows = append(rows,
		renderRow("API", m.baseURL()),
		renderRow("Session file", sessionPath),
		renderRow("Database", m.databaseInfo()),
		renderRow("Log file", orDash(m.config.LogPath)),
		renderRow("Refresh", m.config.UsageRefreshInterval.String()),
		renderRow("Monthly quota", humanize.Comma(int64(m.config.QuotaTotal))+" calls"),
		renderRow("Scoped keys", scoped),
		"",
		styles.HelpStyle.Render("Press 'c' to copy the API URL, 'x' to compact history"),
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) databaseInfo() string {
	if m.services == nil || m.services.Database() == nil {
		return orDash(m.config.DatabasePath)
	}
	db := m.services.Database()
	v, err := db.SchemaVersion()
	if err != nil {
		return db.Path()
	}
	return fmt.Sprintf("%s (schema v%d)", db.Path(), v)
}

func (m *Model) renderAboutCard() string {
	rows := []string{
		styles.CardTitleStyle.Render("About Vertex"),
		"",
		renderRow("Version", version.GetVersion()),
		renderRow("Build date", version.GetDate()),
		renderRow("Commit", version.GetCommit()),
		renderRow("Go", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(16).
		Foreground(styles.TextMuted)
	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func compactionSummary(removed int64) string {
	if removed == 0 {
		return "History already compact"
	}
	return fmt.Sprintf("Removed %s old %s", humanize.Comma(removed), humanize.PluralWord(int(removed), "snapshot", ""))
}

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/logger"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// Usage gradient, from an empty quota to a spent one.
const (
	usageLowColor  = "#51cf66"
	usageHighColor = "#ff6b6b"
)

// AnimationTickMsg advances quota bar animations.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

// QuotaBar renders quota usage as an animated progress bar.
type QuotaBar struct {
	progress       progress.Model
	label          string
	percent        float64
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewQuotaBar creates a quota bar with the usage gradient.
func NewQuotaBar() QuotaBar {
	return NewQuotaBarWithWidth(30)
}

// NewQuotaBarWithWidth creates a quota bar with a specific width.
func NewQuotaBarWithWidth(width int) QuotaBar {
	return QuotaBar{
		progress: progress.New(
			progress.WithScaledGradient(usageLowColor, usageHighColor),
			progress.WithWidth(width),
			progress.WithoutPercentage(),
		),
	}
}

// Init initializes the progress bar model.
func (q QuotaBar) Init() tea.Cmd {
	return nil
}

// Update steps the animation towards the target percentage.
func (q QuotaBar) Update(msg tea.Msg) (QuotaBar, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(AnimationTickMsg); ok && q.isAnimating {
		diff := q.targetPercent - q.currentPercent
		switch {
		case diff > 0:
			q.currentPercent = min(q.currentPercent+max(diff/10, 0.5), q.targetPercent)
			cmds = append(cmds, animationTick())
		case diff < 0:
			q.currentPercent = max(q.currentPercent-max(-diff/10, 0.5), q.targetPercent)
			cmds = append(cmds, animationTick())
		default:
			q.isAnimating = false
		}
	}

	model, cmd := q.progress.Update(msg)
	q.progress = model.(progress.Model)
	cmds = append(cmds, cmd)

	return q, tea.Batch(cmds...)
}

// SetPercent sets the target percentage and starts animating towards it.
func (q *QuotaBar) SetPercent(percent float64) tea.Cmd {
	q.percent = percent
	q.targetPercent = percent

	if !q.isAnimating {
		q.isAnimating = true
		return tea.Batch(
			q.progress.SetPercent(min(percent, 100)/100),
			animationTick(),
		)
	}
	return q.progress.SetPercent(min(percent, 100) / 100)
}

// Percent returns the target percentage.
func (q QuotaBar) Percent() float64 {
	return q.percent
}

// Current returns the percentage currently drawn.
func (q QuotaBar) Current() float64 {
	return q.currentPercent
}

// Animating reports whether the bar is still moving.
func (q QuotaBar) Animating() bool {
	return q.isAnimating
}

// SetLabel sets the bar label.
func (q *QuotaBar) SetLabel(label string) {
	q.label = label
}

// SetWidth sets the progress bar width.
func (q *QuotaBar) SetWidth(width int) {
	q.progress.Width = width
}

// View renders the bar at its animated position with its label and the
// target percentage.
func (q QuotaBar) View(width int) string {
	q.progress.Width = max(width-30, 10)
	bar := q.progress.ViewAs(min(q.currentPercent, 100) / 100)

	pct := int(q.percent + 0.5)
	percentStr := styles.GetQuotaStyle(pct).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%d%%", pct))
	labelStr := styles.ProgressLabelStyle.Width(15).Render(q.label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// ViewCompact renders a bar for percent without label.
func (q QuotaBar) ViewCompact(percent int, width int) string {
	q.progress.Width = max(width-8, 5)

	bar := q.progress.ViewAs(float64(min(percent, 100)) / 100)
	percentStr := styles.GetQuotaStyle(percent).Render(fmt.Sprintf("%d%%", percent))

	return lipgloss.JoinHorizontal(lipgloss.Center, bar, " ", percentStr)
}

// MonthProgress returns how far now is through its calendar month, 0 to 1.
func MonthProgress(now time.Time) float64 {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0)
	return float64(now.Sub(start)) / float64(end.Sub(start))
}

// RenderMonthBar renders the elapsed part of the quota month with the time
// left until the quota resets.
func RenderMonthBar(now time.Time, label string, width int) string {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	left := start.AddDate(0, 1, 0).Sub(now)

	days := int(left.Hours()) / 24
	hours := int(left.Hours()) % 24
	timeStr := fmt.Sprintf("%dd %02dh", days, hours)

	const percentWidth = 8
	barWidth := max(width-(len(label)+1)-percentWidth-4, 10)

	bar := renderGradient(MonthProgress(now), barWidth, "#ffd93d", "#6c5ce7")
	timeStyle := lipgloss.NewStyle().
		Foreground(styles.TextSecondary).
		Width(percentWidth).
		Align(lipgloss.Right)

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	return fmt.Sprintf("%s [%s] %s", labelStr, bar, timeStyle.Render(timeStr))
}

// RenderGradientBar renders just the bar part with the usage gradient.
func RenderGradientBar(percent float64, width int) string {
	return renderGradient(percent/100, width, usageLowColor, usageHighColor)
}

func renderGradient(fraction float64, width int, fromHex, toHex string) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*fraction), 0), width)

	var b strings.Builder
	empty := lipgloss.NewStyle().Foreground(styles.Subtle)
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(interpolateColor(fromHex, toHex, t)))
			b.WriteString(style.Render("█"))
		} else {
			b.WriteString(empty.Render("░"))
		}
	}
	return b.String()
}

// SimpleQuotaBar renders a static usage bar with label and percentage.
func SimpleQuotaBar(percent int, label string, width int) string {
	const percentWidth = 6
	barWidth := max(width-(len(label)+1)-percentWidth-4, 5)

	bar := RenderGradientBar(float64(percent), barWidth)
	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	percentStr := styles.GetQuotaStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%d%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, bar, percentStr)
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}

// SimpleQuotaBarLoading renders a shimmering placeholder bar while
// analytics load. frame advances the shimmer.
func SimpleQuotaBarLoading(label string, width int, frame int) string {
	const percentWidth = 6
	barWidth := max(width-(len(label)+1)-percentWidth-4, 10)

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	p := t * 2
	if t >= 0.5 {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}
		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	loading := lipgloss.NewStyle().
		Width(percentWidth).
		Align(lipgloss.Right).
		Foreground(styles.Primary).
		Render(dots[(frame/2)%len(dots)])

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	return fmt.Sprintf("%s [%s] %s", labelStr, b.String(), loading)
}

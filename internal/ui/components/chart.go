// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/JAYANTJOSHI001/vertex-ai/internal/models"
	"github.com/JAYANTJOSHI001/vertex-ai/internal/ui/styles"
)

// ChartPrimaryColor is the bar and highlight color for charts.
var ChartPrimaryColor = lipgloss.Color("#7D56F4")

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	width = max(width, 20)
	height = max(height, 3)

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// RenderDailyCalls plots the seven weekday buckets oldest first with the
// weekday labels underneath.
func RenderDailyCalls(buckets [7]models.DailyBucket, width, height int) string {
	data := make([]float64, len(buckets))
	labels := make([]string, len(buckets))
	total := 0
	for i, b := range buckets {
		data[i] = float64(b.Calls)
		labels[i] = b.Day
		total += b.Calls
	}

	width = max(width, 28)
	height = max(height, 3)

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.SlateBlue),
		asciigraph.Caption(fmt.Sprintf("API calls, last 7 days (%d total)", total)),
	)

	return graph + "\n" + weekdayAxis(labels, width)
}

// weekdayAxis spreads labels across width so they sit under the plot.
func weekdayAxis(labels []string, width int) string {
	if len(labels) == 0 {
		return ""
	}
	cell := max(width/len(labels), 4)
	var b strings.Builder
	b.WriteString("       ")
	for _, l := range labels {
		b.WriteString(fmt.Sprintf("%-*s", cell, l))
	}
	return styles.HelpStyle.Render(strings.TrimRight(b.String(), " "))
}

// RenderModelRanking draws the model ranking as horizontal bars.
func RenderModelRanking(entries []models.ModelUsageEntry, width int) string {
	if len(entries) == 0 {
		return styles.HelpStyle.Render("No model usage yet")
	}
	values := make([]float64, len(entries))
	labels := make([]string, len(entries))
	for i, e := range entries {
		values[i] = float64(e.Count)
		labels[i] = e.Name
	}
	return RenderBarChart(values, labels, width)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-10, 10)
	barStyle := lipgloss.NewStyle().Foreground(ChartPrimaryColor)

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		barLen := max(int((v/maxVal)*float64(barWidth)), 0)
		bar := barStyle.Render(strings.Repeat("█", barLen))
		lines = append(lines, fmt.Sprintf("%*s │%s %.0f", maxLabelLen, label, bar, v))
	}

	return strings.Join(lines, "\n")
}

// RenderWeeklyPattern renders one spark character per weekday bucket.
func RenderWeeklyPattern(buckets [7]models.DailyBucket) string {
	maxVal := 0
	for _, b := range buckets {
		maxVal = max(maxVal, b.Calls)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		parts = append(parts, fmt.Sprintf("%s %c", b.Day, sparkChars[sparkIndex(float64(b.Calls), float64(maxVal))]))
	}
	return strings.Join(parts, " ")
}

func sparkIndex(val, maxVal float64) int {
	idx := int((val / maxVal) * float64(len(sparkChars)-1))
	return min(max(idx, 0), len(sparkChars)-1)
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	step := max(float64(len(values))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		result.WriteRune(sparkChars[sparkIndex(values[int(float64(i)*step)], maxVal)])
	}
	return result.String()
}

// RenderQuotaSparkline draws recorded quota percentages, colored by how much
// of the quota each point had used.
func RenderQuotaSparkline(history []models.UsageSnapshot, width int) string {
	if len(history) == 0 || width <= 0 {
		return ""
	}

	step := max(float64(len(history))/float64(width), 1)

	var result strings.Builder
	for i := 0; i < width && int(float64(i)*step) < len(history); i++ {
		pct := history[int(float64(i)*step)].Percent()
		idx := sparkIndex(float64(min(pct, 100)), 100)
		result.WriteString(styles.GetQuotaStyle(pct).Render(string(sparkChars[idx])))
	}
	return result.String()
}

// HistorySeries extracts a series from snapshots oldest first.
func HistorySeries(history []models.UsageSnapshot, value func(models.UsageSnapshot) int) []float64 {
	out := make([]float64, len(history))
	for i, s := range history {
		out[i] = float64(value(s))
	}
	return out
}

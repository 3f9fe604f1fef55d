package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"weekly-planner/internal/model"
	"weekly-planner/internal/service"
)

const panelWidth = 66

var (
	colorSuccess = lipgloss.Color("#9ece6a")
	colorInfo    = lipgloss.Color("#7aa2f7")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
	colorDim     = lipgloss.Color("#565f89")

	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(colorInfo)
	panelMuted = lipgloss.NewStyle().Foreground(colorDim)
	panelHead  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	panelFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3b4261")).
			Padding(1, 2)
)

// Panel renders the report for a terminal.
func Panel(report *service.Report) string {
	header := lipgloss.JoinVertical(lipgloss.Left,
		panelTitle.Render("Weekly Task Report"),
		panelMuted.Render("Week of "+report.Meta.WeekStart),
	)

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox(fmt.Sprintf("%d%%", report.Stats.CompletionRate), "completion", colorSuccess),
		statBox(fmt.Sprintf("%d", report.Stats.Completed), "done", colorInfo),
		statBox(fmt.Sprintf("%d", report.Stats.Pending), "pending", colorWarning),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		stats,
		panelHead.Render("Highlights"),
		itemList(report.Highlights, "No completed tasks yet."),
		panelHead.Render("Action Items / Carry Over"),
		itemList(report.ActionItems, "All clear!"),
	)
	return panelFrame.Width(panelWidth).Render(body)
}

func statBox(value, label string, color lipgloss.Color) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(color).
		Width(18).
		Align(lipgloss.Center).
		MarginRight(1)
	return box.Render(lipgloss.JoinVertical(lipgloss.Center,
		lipgloss.NewStyle().Bold(true).Foreground(color).Render(value),
		panelMuted.Render(strings.ToUpper(label)),
	))
}

func itemList(items []service.ReportItem, empty string) string {
	if len(items) == 0 {
		return panelMuted.Italic(true).Render("  " + empty)
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		marker := lipgloss.NewStyle().Foreground(priorityColor(item.Priority)).Render("●")
		lines = append(lines, fmt.Sprintf("  %s %s", marker, item.Title))
	}
	return strings.Join(lines, "\n")
}

func priorityColor(p model.Priority) lipgloss.Color {
	switch p {
	case model.PriorityHigh:
		return colorError
	case model.PriorityMedium:
		return colorWarning
	default:
		return colorDim
	}
}

// Package render turns a weekly report into shareable formats: a chat-friendly text
// summary, an A4 PDF and a terminal panel.
package render

import (
	"fmt"
	"strings"

	"weekly-planner/internal/service"
)

const rule = "-----------------------------------"

// Text renders the clipboard summary. The asterisks are Markdown bold markers that
// chat clients such as Telegram and Slack understand.
func Text(report *service.Report) string {
	lines := []string{
		"📅 *Weekly Report: " + report.Meta.WeekStart + "*",
		rule,
		"📊 *Summary*",
		fmt.Sprintf("• Completion Rate: %d%%", report.Stats.CompletionRate),
		fmt.Sprintf("• Completed: %d / %d", report.Stats.Completed, report.Stats.Total),
		"",
		"🏆 *Highlights*",
	}
	lines = append(lines, bullets(report.Highlights, "(None)")...)
	lines = append(lines, "", "📝 *Action Items / Carry Over*")
	lines = append(lines, bullets(report.ActionItems, "(All clear!)")...)
	return strings.Join(lines, "\n")
}

func bullets(items []service.ReportItem, empty string) []string {
	if len(items) == 0 {
		return []string{"• " + empty}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, "• "+item.Title)
	}
	return out
}

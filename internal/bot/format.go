package bot

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"

	"trackit/internal/model"
	"trackit/internal/service"
)

const (
	progressWidth = 10
	// statsDays caps the series lines shown by /stats.
	statsDays = 14
)

func escape(s string) string {
	return html.EscapeString(s)
}

func formatDayTitle(day model.Date) string {
	return fmt.Sprintf("<b>%s</b>", day.Time(time.UTC).Format("Mon, Jan 2 2006"))
}

// formatDay renders a day view: progress header then one line per task.
func formatDay(day model.Date, tasks []model.Instance, progress service.Progress) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🗓 %s\n", formatDayTitle(day)))
	b.WriteString(fmt.Sprintf("%s %s / %s pts (%.0f%%)\n\n",
		progressBar(progress.Percent, progressWidth),
		service.FormatPoints(progress.Completed),
		service.FormatPoints(progress.Total),
		progress.Percent))

	if len(tasks) == 0 {
		b.WriteString("No tasks for this day. Add one with /newtask.")
		return b.String()
	}

	for _, task := range tasks {
		icon := "⬜"
		if task.Completed {
			icon = "✅"
		}
		line := fmt.Sprintf("%s <b>#%d</b> %s · %s pts", icon, task.ID, escape(normalizeTitle(task.Name)), service.FormatPoints(task.Points))
		if task.FromTemplate() {
			line += " ♻️"
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSpace(b.String())
}

// formatStats renders the totals and the most recent days of the series.
func formatStats(a service.Analytics, lastDays int) string {
	var b strings.Builder
	b.WriteString("📈 <b>Stats</b>\n")
	if !a.Summary.HasBestDay() {
		b.WriteString("Nothing completed yet.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("• <b>Total:</b> %s pts\n", service.FormatPoints(a.Summary.TotalPoints)))
	b.WriteString(fmt.Sprintf("• <b>Best day:</b> %s with %s pts\n\n",
		a.Summary.BestDay.Date, service.FormatPoints(a.Summary.BestDay.Points)))

	series := a.Series
	if lastDays > 0 && len(series) > lastDays {
		series = series[len(series)-lastDays:]
	}
	for _, day := range series {
		b.WriteString(fmt.Sprintf("<code>%s</code> %s\n", day.Date, service.FormatPoints(day.Points)))
	}
	return strings.TrimSpace(b.String())
}

// progressBar draws percent as width blocks.
func progressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent / 100 * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return strings.Repeat("▓", filled) + strings.Repeat("░", width-filled)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	clean = normalizeTitle(clean)
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

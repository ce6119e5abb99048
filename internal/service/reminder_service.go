package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"trackit/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks *TaskService
}

func NewReminderService(tasks *TaskService) *ReminderService {
	return &ReminderService{tasks: tasks}
}

// DailySummary lists day's tasks with their completion state, as Telegram HTML.
func (s *ReminderService) DailySummary(ctx context.Context, day model.Date) (string, error) {
	tasks, err := s.tasks.EnsureAndListTasks(ctx, day)
	if err != nil {
		return "", err
	}
	progress := ComputeProgress(tasks)

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily report</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", day.Time(time.UTC).Format("Monday, January 2, 2006")))

	var pending, done []model.Instance
	for _, task := range tasks {
		if task.Completed {
			done = append(done, task)
		} else {
			pending = append(pending, task)
		}
	}

	builder.WriteString("🔥 <b>Still open</b>\n")
	if len(pending) == 0 {
		builder.WriteString("• nothing left, well done\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatReportLine("⬜", task))
		}
	}

	if len(done) > 0 {
		builder.WriteString("\n✅ <b>Done</b>\n")
		for _, task := range done {
			builder.WriteString(formatReportLine("✅", task))
		}
	}

	builder.WriteString(fmt.Sprintf("\n📈 %s / %s points (%.0f%%)",
		FormatPoints(progress.Completed), FormatPoints(progress.Total), progress.Percent))

	return strings.TrimSpace(builder.String()), nil
}

func formatReportLine(icon string, task model.Instance) string {
	title := html.EscapeString(strings.TrimSpace(task.Name))
	line := fmt.Sprintf("%s %s · %s pts", icon, title, FormatPoints(task.Points))
	if task.FromTemplate() {
		line += " ♻️"
	}
	return line + "\n"
}

// FormatPoints prints whole points without a decimal and half points with one.
func FormatPoints(points float64) string {
	if points == float64(int64(points)) {
		return fmt.Sprintf("%d", int64(points))
	}
	return fmt.Sprintf("%.1f", points)
}

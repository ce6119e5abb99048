package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"trackit/internal/model"
	"trackit/internal/service"
)

const progressBarWidth = 20

// FormatDay renders the task list of one day with its progress bar.
func FormatDay(day model.Date, tasks []model.Instance, progress service.Progress) string {
	var b strings.Builder
	b.WriteString(Header(day.String()))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(Dim("No tasks for this day."))
		b.WriteString("\n")
	} else {
		rows := make([][]string, 0, len(tasks))
		for _, task := range tasks {
			rows = append(rows, []string{
				strconv.FormatUint(uint64(task.ID), 10),
				checkbox(task.Completed),
				task.Name,
				service.FormatPoints(task.Points),
				origin(task),
			})
		}
		b.WriteString(RenderTable([]string{"ID", "", "TASK", "POINTS", ""}, rows))
	}

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s  %s / %s points\n",
		RenderProgress(progress.Percent, progressBarWidth),
		Bold(service.FormatPoints(progress.Completed)),
		service.FormatPoints(progress.Total)))
	return b.String()
}

// FormatTemplates renders the recurring task templates.
func FormatTemplates(templates []model.Template) string {
	if len(templates) == 0 {
		return Dim("No recurring tasks.") + "\n"
	}
	rows := make([][]string, 0, len(templates))
	for _, tmpl := range templates {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(tmpl.ID), 10),
			tmpl.Name,
			service.FormatPoints(tmpl.Points),
			tmpl.StartDate.String(),
		})
	}
	return Header("Recurring tasks") + "\n\n" + RenderTable([]string{"ID", "TASK", "POINTS", "SINCE"}, rows)
}

// FormatStats renders the points series with its total and best day.
func FormatStats(a service.Analytics) string {
	if !a.Summary.HasBestDay() {
		return Dim("Nothing completed yet.") + "\n"
	}

	var b strings.Builder
	b.WriteString(Header("Points history"))
	b.WriteString("\n\n")

	best := a.Summary.BestDay.Points
	rows := make([][]string, 0, len(a.Series))
	for _, day := range a.Series {
		points := service.FormatPoints(day.Points)
		if day.Date.Equal(a.Summary.BestDay.Date) {
			points = StyleGreen.Render(points)
		}
		rows = append(rows, []string{
			day.Date.String(),
			points,
			StyleBlue.Render(strings.Repeat(filledBlock, barLength(day.Points, best))),
		})
	}
	b.WriteString(RenderTable([]string{"DATE", "POINTS", ""}, rows))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Total: %s points\n", Bold(service.FormatPoints(a.Summary.TotalPoints))))
	b.WriteString(fmt.Sprintf("Best day: %s with %s points\n",
		a.Summary.BestDay.Date, Bold(service.FormatPoints(best))))
	return b.String()
}

// FormatTask renders one task on a single line.
func FormatTask(task model.Task) string {
	base := task.Base()
	switch t := task.(type) {
	case model.Template:
		return fmt.Sprintf("#%d %s (%s pts, daily since %s)", base.ID, base.Name, service.FormatPoints(base.Points), t.StartDate)
	case model.Instance:
		return fmt.Sprintf("#%d %s %s (%s pts, %s)", base.ID, checkbox(t.Completed), base.Name, service.FormatPoints(base.Points), t.Date)
	default:
		return fmt.Sprintf("#%d %s", base.ID, base.Name)
	}
}

func checkbox(done bool) string {
	if done {
		return StyleGreen.Render("[x]")
	}
	return "[ ]"
}

func origin(task model.Instance) string {
	if task.FromTemplate() {
		return Dim("recurring")
	}
	return ""
}

// barLength scales points against max onto a 30-column bar.
func barLength(points, max float64) int {
	const maxBar = 30
	if max <= 0 {
		return 0
	}
	n := int(points / max * maxBar)
	if n < 1 && points > 0 {
		n = 1
	}
	return n
}

package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"trackit/internal/model"
	"trackit/internal/service"
)

func init() {
	SetColor(false)
}

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		width   int
		want    string
	}{
		{"empty", 0, 4, "[░░░░]   0%"},
		{"half", 50, 4, "[██░░]  50%"},
		{"full", 100, 4, "[████] 100%"},
		{"over 100 clamps", 150, 4, "[████] 100%"},
		{"negative clamps", -10, 4, "[░░░░]   0%"},
		{"tiny width clamps to 2", 50, 1, "[█░]  50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderProgress(tt.percent, tt.width))
		})
	}
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"ID", "TASK"}, [][]string{{"1", "Read"}, {"12", "Write"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "ID  TASK", lines[0])
	assert.Equal(t, "1   Read", lines[2])
	assert.Equal(t, "12  Write", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatDay(t *testing.T) {
	parent := uint(1)
	day := model.NewDate(2024, time.January, 3)
	tasks := []model.Instance{
		{TaskBase: model.TaskBase{ID: 2, Name: "Read", Points: 1}, Date: day, Visible: true, ParentID: &parent},
		{TaskBase: model.TaskBase{ID: 3, Name: "Write", Points: 2}, Date: day, Visible: true, Completed: true},
	}

	out := FormatDay(day, tasks, service.ComputeProgress(tasks))
	assert.Contains(t, out, "2024-01-03")
	assert.Contains(t, out, "[ ]")
	assert.Contains(t, out, "[x]")
	assert.Contains(t, out, "recurring")
	assert.Contains(t, out, "2 / 3 points")

	empty := FormatDay(day, nil, service.Progress{})
	assert.Contains(t, empty, "No tasks for this day.")
}

func TestFormatTemplates(t *testing.T) {
	assert.Contains(t, FormatTemplates(nil), "No recurring tasks.")

	out := FormatTemplates([]model.Template{{
		TaskBase:  model.TaskBase{ID: 5, Name: "Stretch", Points: 0.5},
		StartDate: model.NewDate(2024, time.January, 1),
	}})
	assert.Contains(t, out, "Stretch")
	assert.Contains(t, out, "0.5")
	assert.Contains(t, out, "2024-01-01")
}

func TestFormatStats(t *testing.T) {
	assert.Contains(t, FormatStats(service.Analytics{}), "Nothing completed yet.")

	jan1 := model.NewDate(2024, time.January, 1)
	series := []service.DayPoints{{Date: jan1, Points: 3}, {Date: jan1.AddDays(1), Points: 6}}
	out := FormatStats(service.Analytics{Series: series, Summary: service.Summarize(series)})

	assert.Contains(t, out, "Total: 9 points")
	assert.Contains(t, out, "Best day: 2024-01-02 with 6 points")
	assert.Contains(t, out, strings.Repeat(filledBlock, 30))
	assert.Contains(t, out, strings.Repeat(filledBlock, 15))
}

func TestFormatTask(t *testing.T) {
	day := model.NewDate(2024, time.January, 3)
	assert.Equal(t, "#4 Read (1 pts, daily since 2024-01-03)",
		FormatTask(model.Template{TaskBase: model.TaskBase{ID: 4, Name: "Read", Points: 1}, StartDate: day}))
	assert.Equal(t, "#5 [x] Write (2.5 pts, 2024-01-03)",
		FormatTask(model.Instance{TaskBase: model.TaskBase{ID: 5, Name: "Write", Points: 2.5}, Date: day, Completed: true}))
}

func TestBarLength(t *testing.T) {
	assert.Equal(t, 30, barLength(6, 6))
	assert.Equal(t, 15, barLength(3, 6))
	assert.Equal(t, 1, barLength(0.01, 6))
	assert.Equal(t, 0, barLength(1, 0))
}

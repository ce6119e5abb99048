package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackit/internal/model"
)

func inst(day model.Date, points float64, completed, visible bool) model.Instance {
	return model.Instance{
		TaskBase:  model.TaskBase{Points: points},
		Date:      day,
		Completed: completed,
		Visible:   visible,
	}
}

func TestComputeProgress(t *testing.T) {
	day := model.NewDate(2024, time.January, 3)

	p := ComputeProgress([]model.Instance{
		inst(day, 2, true, true),
		inst(day, 3, false, true),
	})
	assert.Equal(t, Progress{Total: 5, Completed: 2, Percent: 40}, p)
}

func TestComputeProgress_Bounds(t *testing.T) {
	day := model.NewDate(2024, time.January, 3)

	tests := []struct {
		name  string
		tasks []model.Instance
		want  float64
	}{
		{"empty", nil, 0},
		{"all done", []model.Instance{inst(day, 1, true, true), inst(day, 0.5, true, true)}, 100},
		{"none done", []model.Instance{inst(day, 4, false, true)}, 0},
		{"hidden only", []model.Instance{inst(day, 4, true, false)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeProgress(tt.tasks)
			assert.Equal(t, tt.want, p.Percent)
			assert.GreaterOrEqual(t, p.Percent, 0.0)
			assert.LessOrEqual(t, p.Percent, 100.0)
		})
	}
}

func TestComputeProgress_IgnoresHidden(t *testing.T) {
	day := model.NewDate(2024, time.January, 3)

	p := ComputeProgress([]model.Instance{
		inst(day, 2, true, true),
		inst(day, 10, true, false),
		inst(day, 2, false, true),
	})
	assert.Equal(t, 4.0, p.Total)
	assert.Equal(t, 2.0, p.Completed)
	assert.Equal(t, 50.0, p.Percent)
}

func TestBuildSeriesAndSummarize(t *testing.T) {
	jan1 := model.NewDate(2024, time.January, 1)
	jan2 := jan1.AddDays(1)

	series := BuildSeries([]model.Instance{
		inst(jan2, 5, true, true),
		inst(jan1, 1, true, true),
		inst(jan1, 2, true, true),
		inst(jan1, 7, false, true),
		inst(jan2, 9, true, false),
	})
	require.Equal(t, []DayPoints{{Date: jan1, Points: 3}, {Date: jan2, Points: 5}}, series)

	summary := Summarize(series)
	assert.Equal(t, 8.0, summary.TotalPoints)
	assert.True(t, summary.HasBestDay())
	assert.Equal(t, DayPoints{Date: jan2, Points: 5}, summary.BestDay)
}

func TestSummarize_TieGoesToEarliest(t *testing.T) {
	jan1 := model.NewDate(2024, time.January, 1)

	summary := Summarize([]DayPoints{{Date: jan1, Points: 4}, {Date: jan1.AddDays(3), Points: 4}})
	assert.Equal(t, jan1, summary.BestDay.Date)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.TotalPoints)
	assert.False(t, summary.HasBestDay())
}

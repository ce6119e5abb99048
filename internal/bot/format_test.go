package bot

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackit/internal/model"
	"trackit/internal/service"
	"trackit/internal/store"
)

func instance(id uint, name string, points float64, completed bool, parent *uint) model.Instance {
	return model.Instance{
		TaskBase:  model.TaskBase{ID: id, Name: name, Points: points},
		Date:      model.NewDate(2024, time.January, 3),
		Completed: completed,
		Visible:   true,
		ParentID:  parent,
	}
}

func TestFormatDay(t *testing.T) {
	parent := uint(1)
	day := model.NewDate(2024, time.January, 3)
	tasks := []model.Instance{
		instance(2, "read <fast>", 1, false, &parent),
		instance(3, "Write", 2, true, nil),
	}

	text := formatDay(day, tasks, service.ComputeProgress(tasks))
	assert.Contains(t, text, "Wed, Jan 3 2024")
	assert.Contains(t, text, "⬜ <b>#2</b> Read &lt;fast&gt; · 1 pts ♻️")
	assert.Contains(t, text, "✅ <b>#3</b> Write · 2 pts")
	assert.Contains(t, text, "2 / 3 pts (67%)")
}

func TestFormatDay_Empty(t *testing.T) {
	text := formatDay(model.NewDate(2024, time.January, 3), nil, service.Progress{})
	assert.Contains(t, text, "No tasks for this day")
	assert.Contains(t, text, "0 / 0 pts (0%)")
}

func TestFormatStats(t *testing.T) {
	assert.Contains(t, formatStats(service.Analytics{}, statsDays), "Nothing completed yet")

	jan1 := model.NewDate(2024, time.January, 1)
	var series []service.DayPoints
	for i := 0; i < 20; i++ {
		series = append(series, service.DayPoints{Date: jan1.AddDays(i), Points: float64(i + 1)})
	}
	a := service.Analytics{Series: series, Summary: service.Summarize(series)}

	text := formatStats(a, 3)
	assert.Contains(t, text, "<b>Total:</b> 210 pts")
	assert.Contains(t, text, "<b>Best day:</b> 2024-01-20 with 20 pts")
	assert.Equal(t, 3, strings.Count(text, "<code>"))
	assert.NotContains(t, text, "<code>2024-01-17</code>")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", progressBar(0, 10))
	assert.Equal(t, "▓▓▓▓░░░░░░", progressBar(40, 10))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", progressBar(100, 10))
	assert.Equal(t, "▓▓▓▓▓▓▓▓▓▓", progressBar(150, 10))
	assert.Equal(t, "", progressBar(50, 0))
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "Read", shortTitle("read", 10))
	assert.Equal(t, "Read a ch…", shortTitle("read a chapter", 10))
	assert.Equal(t, "Two lines", shortTitle("two\nlines", 20))
}

func TestParseTaskID(t *testing.T) {
	id, err := parseTaskID("toggle:42", cbTogglePrefix)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseTaskID("toggle:x", cbTogglePrefix)
	assert.Error(t, err)
}

func TestParsePoints(t *testing.T) {
	p, err := parsePoints("2,5")
	require.NoError(t, err)
	assert.Equal(t, 2.5, p)

	_, err = parsePoints("0.3")
	assert.ErrorIs(t, err, service.ErrValidation)
	_, err = parsePoints("lots")
	assert.Error(t, err)
}

func TestParseEditArgs(t *testing.T) {
	id, points, name, err := parseEditArgs("12 1.5 Read a chapter")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)
	assert.Equal(t, 1.5, points)
	assert.Equal(t, "Read a chapter", name)

	for _, bad := range []string{"", "12", "12 1", "x 1 name", "12 0 name"} {
		_, _, _, err := parseEditArgs(bad)
		assert.Error(t, err, bad)
	}
}

func TestDescribeError(t *testing.T) {
	assert.Equal(t, "Task not found.", describeError(fmt.Errorf("task 3: %w", store.ErrNotFound)))
	assert.Contains(t, describeError(service.ErrTemplateHasNoCompletion), "cannot be completed")
	assert.Equal(t, "name is required", describeError(fmt.Errorf("%w: name is required", service.ErrValidation)))
	assert.Contains(t, describeError(fmt.Errorf("query: %w", store.ErrUnavailable)), "unavailable")
	assert.Equal(t, "Error: a &lt; b", describeError(fmt.Errorf("a < b")))
}

func TestDayKeyboard(t *testing.T) {
	day := model.NewDate(2024, time.January, 3)
	kb := dayKeyboard(day, []model.Instance{instance(7, "Write", 2, true, nil)})

	require.Len(t, kb.InlineKeyboard, 2)
	row := kb.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "✅ #7 · Write", row[0].Text)
	require.NotNil(t, row[0].CallbackData)
	assert.Equal(t, "toggle:7", *row[0].CallbackData)
	assert.Equal(t, "delete:7", *row[1].CallbackData)

	nav := kb.InlineKeyboard[1]
	assert.Equal(t, "day:2024-01-02", *nav[0].CallbackData)
	assert.Equal(t, "day:2024-01-04", *nav[1].CallbackData)
}

func TestInputMatchers(t *testing.T) {
	assert.True(t, isConfirmInput(btnConfirm))
	assert.True(t, isConfirmInput(" YES "))
	assert.True(t, isCancelInput(btnCancel))
	assert.True(t, isCancelDialogInput("Cancel"))
	assert.False(t, isCancelDialogInput("Read"))
}

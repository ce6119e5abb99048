package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackit/internal/testutil"
)

func TestDailySummary(t *testing.T) {
	svc, st := newTestService(t)
	reminder := NewReminderService(svc)
	day := testutil.MustDate(t, "2024-01-03")

	testutil.NewTemplate(t, st, "Read", 1, testutil.MustDate(t, "2024-01-01"))
	testutil.NewStandalone(t, st, "Write <draft>", 2, day, testutil.Completed())

	text, err := reminder.DailySummary(context.Background(), day)
	require.NoError(t, err)
	assert.Contains(t, text, "Wednesday, January 3, 2024")
	assert.Contains(t, text, "⬜ Read · 1 pts ♻️")
	assert.Contains(t, text, "✅ Write &lt;draft&gt; · 2 pts")
	assert.Contains(t, text, "2 / 3 points (67%)")
}

func TestDailySummary_EmptyDay(t *testing.T) {
	svc, _ := newTestService(t)
	reminder := NewReminderService(svc)

	text, err := reminder.DailySummary(context.Background(), testutil.MustDate(t, "2024-01-03"))
	require.NoError(t, err)
	assert.Contains(t, text, "nothing left")
	assert.Contains(t, text, "0 / 0 points (0%)")
	assert.NotContains(t, text, "<b>Done</b>")
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "3", FormatPoints(3))
	assert.Equal(t, "2.5", FormatPoints(2.5))
	assert.Equal(t, "0", FormatPoints(0))
}

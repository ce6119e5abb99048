package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	day := NewDate(2024, time.January, 1)

	tmpl := Decode(TaskRecord{ID: 1, Name: "Read", Points: 1, Date: day, IsRecurring: true, IsVisible: true})
	require.IsType(t, Template{}, tmpl)
	assert.Equal(t, TaskBase{ID: 1, Name: "Read", Points: 1}, tmpl.Base())
	assert.Equal(t, day, tmpl.(Template).StartDate)

	parent := uint(1)
	inst := Decode(TaskRecord{ID: 2, Name: "Read", Points: 1, Date: day, IsCompleted: true, IsVisible: true, ParentID: &parent})
	require.IsType(t, Instance{}, inst)
	assert.True(t, inst.(Instance).Completed)
	assert.True(t, inst.(Instance).FromTemplate())
}

func TestTemplate_AppliesTo(t *testing.T) {
	tmpl := Template{StartDate: NewDate(2024, time.January, 2)}

	assert.False(t, tmpl.AppliesTo(NewDate(2024, time.January, 1)))
	assert.True(t, tmpl.AppliesTo(NewDate(2024, time.January, 2)))
	assert.True(t, tmpl.AppliesTo(NewDate(2030, time.December, 31)))
}

func TestTemplate_InstanceRecord(t *testing.T) {
	tmpl := Template{
		TaskBase:  TaskBase{ID: 7, Name: "Stretch", Points: 1.5},
		StartDate: NewDate(2024, time.January, 1),
	}
	day := NewDate(2024, time.January, 3)

	rec := tmpl.InstanceRecord(day)
	assert.Equal(t, "Stretch", rec.Name)
	assert.Equal(t, 1.5, rec.Points)
	assert.Equal(t, day, rec.Date)
	assert.False(t, rec.IsRecurring)
	assert.False(t, rec.IsCompleted)
	assert.True(t, rec.IsVisible)
	require.NotNil(t, rec.ParentID)
	assert.Equal(t, uint(7), *rec.ParentID)
}

func TestInstancesAndTemplates_SplitRows(t *testing.T) {
	day := NewDate(2024, time.January, 1)
	recs := []TaskRecord{
		{ID: 1, Name: "a", Date: day, IsRecurring: true},
		{ID: 2, Name: "b", Date: day},
		{ID: 3, Name: "c", Date: day},
	}

	instances := Instances(recs)
	require.Len(t, instances, 2)
	assert.Equal(t, uint(2), instances[0].ID)

	templates := Templates(recs)
	require.Len(t, templates, 1)
	assert.Equal(t, uint(1), templates[0].ID)
}

package model

import "time"

// TaskRecord is the stored row of the tasks collection. A row with IsRecurring set is a
// template; every other row is a dated instance.
type TaskRecord struct {
	ID          uint        `gorm:"primaryKey" json:"id,omitempty"`
	Name        string      `gorm:"not null" json:"name"`
	Points      float64     `gorm:"not null" json:"points"`
	Date        Date        `gorm:"not null;index;uniqueIndex:idx_tasks_parent_date,priority:2" json:"date"`
	IsRecurring bool        `gorm:"not null;default:false;index" json:"is_recurring"`
	IsCompleted bool        `gorm:"not null;default:false" json:"is_completed"`
	IsVisible   bool        `gorm:"not null" json:"is_visible"`
	ParentID    *uint       `gorm:"uniqueIndex:idx_tasks_parent_date,priority:1" json:"parent_id"`
	Parent      *TaskRecord `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}

func (TaskRecord) TableName() string {
	return "tasks"
}

// TaskBase is what templates and instances have in common.
type TaskBase struct {
	ID     uint
	Name   string
	Points float64
}

// Task is either a Template or an Instance.
type Task interface {
	Base() TaskBase
}

// Template marks a task that recurs daily from StartDate onward, with no end.
type Template struct {
	TaskBase
	StartDate Date
}

func (t Template) Base() TaskBase { return t.TaskBase }

// AppliesTo reports whether the template recurs on day.
func (t Template) AppliesTo(day Date) bool {
	return !t.StartDate.After(day)
}

// InstanceRecord returns the row to materialize for day. Name and points are copied now
// and never synced again.
func (t Template) InstanceRecord(day Date) TaskRecord {
	parentID := t.ID
	return TaskRecord{
		Name:        t.Name,
		Points:      t.Points,
		Date:        day,
		IsRecurring: false,
		IsCompleted: false,
		IsVisible:   true,
		ParentID:    &parentID,
	}
}

// Instance is a concrete task for one date, either standalone or derived from a template.
type Instance struct {
	TaskBase
	Date      Date
	Completed bool
	Visible   bool
	ParentID  *uint
}

func (i Instance) Base() TaskBase { return i.TaskBase }

// FromTemplate reports whether the instance still references a template.
func (i Instance) FromTemplate() bool { return i.ParentID != nil }

// Decode turns a stored row into its variant.
func Decode(rec TaskRecord) Task {
	if rec.IsRecurring {
		return TemplateOf(rec)
	}
	return InstanceOf(rec)
}

func TemplateOf(rec TaskRecord) Template {
	return Template{
		TaskBase:  TaskBase{ID: rec.ID, Name: rec.Name, Points: rec.Points},
		StartDate: rec.Date,
	}
}

func InstanceOf(rec TaskRecord) Instance {
	return Instance{
		TaskBase:  TaskBase{ID: rec.ID, Name: rec.Name, Points: rec.Points},
		Date:      rec.Date,
		Completed: rec.IsCompleted,
		Visible:   rec.IsVisible,
		ParentID:  rec.ParentID,
	}
}

// Instances decodes rows that are known to be instances. Templates are skipped.
func Instances(recs []TaskRecord) []Instance {
	out := make([]Instance, 0, len(recs))
	for _, rec := range recs {
		if rec.IsRecurring {
			continue
		}
		out = append(out, InstanceOf(rec))
	}
	return out
}

func Templates(recs []TaskRecord) []Template {
	out := make([]Template, 0, len(recs))
	for _, rec := range recs {
		if !rec.IsRecurring {
			continue
		}
		out = append(out, TemplateOf(rec))
	}
	return out
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"trackit/internal/model"
	"trackit/internal/store"
)

// TaskRepository is the gorm-backed tasks collection.
type TaskRepository struct {
	db *gorm.DB
}

var _ store.Store = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Query(ctx context.Context, filters []store.Filter, order ...store.Order) ([]model.TaskRecord, error) {
	db, err := where(r.db.WithContext(ctx), filters)
	if err != nil {
		return nil, err
	}
	for _, o := range order {
		if err := store.CheckField(o.Field); err != nil {
			return nil, err
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Field}, Desc: o.Desc})
	}

	var tasks []model.TaskRecord
	if err := db.Find(&tasks).Error; err != nil {
		return nil, unavailable("query tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepository) QueryOne(ctx context.Context, filters []store.Filter) (*model.TaskRecord, error) {
	db, err := where(r.db.WithContext(ctx), filters)
	if err != nil {
		return nil, err
	}

	var task model.TaskRecord
	err = db.First(&task).Error
	switch {
	case err == nil:
		return &task, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	default:
		return nil, unavailable("find task", err)
	}
}

func (r *TaskRepository) Insert(ctx context.Context, task *model.TaskRecord) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return unavailable("create task", err)
	}
	return nil
}

// InsertIfAbsent relies on idx_tasks_parent_date: a conflicting row is skipped by the
// database, never by a separate lookup.
func (r *TaskRepository) InsertIfAbsent(ctx context.Context, task *model.TaskRecord) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: store.FieldParentID}, {Name: store.FieldDate}},
			DoNothing: true,
		}).
		Create(task)
	if res.Error != nil {
		return false, unavailable("create task instance", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *TaskRepository) Update(ctx context.Context, id uint, fields map[string]any) error {
	if err := store.CheckFields(fields); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&model.TaskRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return unavailable("update task", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update task %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.TaskRecord{}, id)
	if res.Error != nil {
		return unavailable("delete task", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete task %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func where(db *gorm.DB, filters []store.Filter) (*gorm.DB, error) {
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		col := clause.Column{Name: f.Field}
		switch f.Op {
		case store.OpEq:
			db = db.Where(clause.Eq{Column: col, Value: f.Value})
		case store.OpLte:
			db = db.Where(clause.Lte{Column: col, Value: f.Value})
		case store.OpIsNull:
			db = db.Where(clause.Eq{Column: col, Value: nil})
		}
	}
	return db, nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}

package supabase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"

	"trackit/internal/model"
	"trackit/internal/store"
)

const (
	tableTasks  = "tasks"
	taskColumns = "id,name,points,date,is_recurring,is_completed,is_visible,parent_id"

	// PostgreSQL unique_violation, reported by PostgREST as "(23505) ...".
	uniqueViolation = "(23505)"
)

// TaskStore is the tasks collection served by Supabase's PostgREST API. The table needs
// the unique index from schema.sql for InsertIfAbsent to hold.
type TaskStore struct {
	client *supabase.Client
	log    logrus.FieldLogger
}

var _ store.Store = (*TaskStore)(nil)

func NewTaskStore(url, key string, log logrus.FieldLogger) (*TaskStore, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &TaskStore{client: client, log: log}, nil
}

// insertRow leaves id and timestamps to the database.
type insertRow struct {
	Name        string     `json:"name"`
	Points      float64    `json:"points"`
	Date        model.Date `json:"date"`
	IsRecurring bool       `json:"is_recurring"`
	IsCompleted bool       `json:"is_completed"`
	IsVisible   bool       `json:"is_visible"`
	ParentID    *uint      `json:"parent_id"`
}

func rowOf(rec *model.TaskRecord) insertRow {
	return insertRow{
		Name:        rec.Name,
		Points:      rec.Points,
		Date:        rec.Date,
		IsRecurring: rec.IsRecurring,
		IsCompleted: rec.IsCompleted,
		IsVisible:   rec.IsVisible,
		ParentID:    rec.ParentID,
	}
}

func (s *TaskStore) Query(ctx context.Context, filters []store.Filter, order ...store.Order) ([]model.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := applyFilters(s.client.From(tableTasks).Select(taskColumns, "", false), filters)
	if err != nil {
		return nil, err
	}
	for _, o := range order {
		if err := store.CheckField(o.Field); err != nil {
			return nil, err
		}
		q = q.Order(o.Field, &postgrest.OrderOpts{Ascending: !o.Desc})
	}

	var tasks []model.TaskRecord
	if _, err := q.ExecuteTo(&tasks); err != nil {
		return nil, unavailable("query tasks", err)
	}
	return tasks, nil
}

func (s *TaskStore) QueryOne(ctx context.Context, filters []store.Filter) (*model.TaskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q, err := applyFilters(s.client.From(tableTasks).Select(taskColumns, "", false), filters)
	if err != nil {
		return nil, err
	}

	var tasks []model.TaskRecord
	if _, err := q.Order(store.FieldID, &postgrest.OrderOpts{Ascending: true}).Limit(1, "").ExecuteTo(&tasks); err != nil {
		return nil, unavailable("find task", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

func (s *TaskStore) Insert(ctx context.Context, rec *model.TaskRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	created, err := s.insert(rec)
	if err != nil {
		return unavailable("create task", err)
	}
	*rec = created
	return nil
}

// InsertIfAbsent lets the (parent_id, date) unique index reject duplicates; PostgREST has
// no "ignore duplicates" preference in this client, so the violation is the signal.
func (s *TaskStore) InsertIfAbsent(ctx context.Context, rec *model.TaskRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	created, err := s.insert(rec)
	if err != nil {
		if strings.Contains(err.Error(), uniqueViolation) {
			s.log.WithFields(logrus.Fields{"parent_id": rec.ParentID, "date": rec.Date.String()}).
				Debug("instance already exists")
			return false, nil
		}
		return false, unavailable("create task instance", err)
	}
	*rec = created
	return true, nil
}

func (s *TaskStore) insert(rec *model.TaskRecord) (model.TaskRecord, error) {
	var out []model.TaskRecord
	if _, err := s.client.From(tableTasks).
		Insert(rowOf(rec), false, "", "representation", "").
		ExecuteTo(&out); err != nil {
		return model.TaskRecord{}, err
	}
	if len(out) == 0 {
		return model.TaskRecord{}, fmt.Errorf("insert returned no rows")
	}
	return out[0], nil
}

func (s *TaskStore) Update(ctx context.Context, id uint, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckFields(fields); err != nil {
		return err
	}

	var out []model.TaskRecord
	if _, err := s.client.From(tableTasks).
		Update(fields, "representation", "").
		Eq(store.FieldID, formatID(id)).
		ExecuteTo(&out); err != nil {
		return unavailable("update task", err)
	}
	if len(out) == 0 {
		return fmt.Errorf("update task %d: %w", id, store.ErrNotFound)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id uint) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var out []model.TaskRecord
	if _, err := s.client.From(tableTasks).
		Delete("representation", "").
		Eq(store.FieldID, formatID(id)).
		ExecuteTo(&out); err != nil {
		return unavailable("delete task", err)
	}
	if len(out) == 0 {
		return fmt.Errorf("delete task %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// applyFilters maps store filters onto PostgREST query params. PostgREST keys params by
// column, so two filters on one column are rejected instead of silently overwritten.
func applyFilters(q *postgrest.FilterBuilder, filters []store.Filter) (*postgrest.FilterBuilder, error) {
	seen := make(map[string]bool, len(filters))
	for _, f := range filters {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		if seen[f.Field] {
			return nil, fmt.Errorf("%w: more than one filter on %q", store.ErrInvalidFilter, f.Field)
		}
		seen[f.Field] = true

		switch f.Op {
		case store.OpEq:
			q = q.Eq(f.Field, formatValue(f.Value))
		case store.OpLte:
			q = q.Lte(f.Field, formatValue(f.Value))
		case store.OpIsNull:
			q = q.Is(f.Field, "null")
		}
	}
	return q, nil
}

func formatValue(v any) string {
	switch val := v.(type) {
	case model.Date:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case uint:
		return formatID(val)
	case *uint:
		if val == nil {
			return "null"
		}
		return formatID(*val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, store.ErrUnavailable, err)
}

package testutil

import (
	"context"
	"errors"
	"testing"

	"trackit/internal/model"
	"trackit/internal/store"
)

// MustDate parses YYYY-MM-DD or fails the test.
func MustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	if err != nil {
		t.Fatalf("bad test date %q: %v", s, err)
	}
	return d
}

// RecordOption customizes a fixture record.
type RecordOption func(*model.TaskRecord)

func Completed() RecordOption {
	return func(r *model.TaskRecord) { r.IsCompleted = true }
}

func Hidden() RecordOption {
	return func(r *model.TaskRecord) { r.IsVisible = false }
}

func WithParent(id uint) RecordOption {
	return func(r *model.TaskRecord) { r.ParentID = &id }
}

// NewTemplate inserts a recurring template starting on day.
func NewTemplate(t *testing.T, st store.Store, name string, points float64, day model.Date) model.TaskRecord {
	t.Helper()
	rec := model.TaskRecord{Name: name, Points: points, Date: day, IsRecurring: true, IsVisible: true}
	insert(t, st, &rec)
	return rec
}

// NewStandalone inserts a one-off task for day.
func NewStandalone(t *testing.T, st store.Store, name string, points float64, day model.Date, opts ...RecordOption) model.TaskRecord {
	t.Helper()
	rec := model.TaskRecord{Name: name, Points: points, Date: day, IsVisible: true}
	for _, opt := range opts {
		opt(&rec)
	}
	insert(t, st, &rec)
	return rec
}

func insert(t *testing.T, st store.Store, rec *model.TaskRecord) {
	t.Helper()
	if err := st.Insert(context.Background(), rec); err != nil {
		t.Fatalf("insert fixture %q: %v", rec.Name, err)
	}
}

var ErrInjected = errors.New("injected store failure")

// FailingStore wraps a Store and fails the operations that are switched on.
type FailingStore struct {
	store.Store
	FailQuery          bool
	FailQueryOne       bool
	FailInsert         bool
	FailInsertIfAbsent bool
	FailUpdate         bool
	FailDelete         bool

	// QueryCalls counts Query invocations, including failed ones.
	QueryCalls int
}

func (f *FailingStore) Query(ctx context.Context, filters []store.Filter, order ...store.Order) ([]model.TaskRecord, error) {
	f.QueryCalls++
	if f.FailQuery {
		return nil, unavailable()
	}
	return f.Store.Query(ctx, filters, order...)
}

func (f *FailingStore) QueryOne(ctx context.Context, filters []store.Filter) (*model.TaskRecord, error) {
	if f.FailQueryOne {
		return nil, unavailable()
	}
	return f.Store.QueryOne(ctx, filters)
}

func (f *FailingStore) Insert(ctx context.Context, rec *model.TaskRecord) error {
	if f.FailInsert {
		return unavailable()
	}
	return f.Store.Insert(ctx, rec)
}

func (f *FailingStore) InsertIfAbsent(ctx context.Context, rec *model.TaskRecord) (bool, error) {
	if f.FailInsertIfAbsent {
		return false, unavailable()
	}
	return f.Store.InsertIfAbsent(ctx, rec)
}

func (f *FailingStore) Update(ctx context.Context, id uint, fields map[string]any) error {
	if f.FailUpdate {
		return unavailable()
	}
	return f.Store.Update(ctx, id, fields)
}

func (f *FailingStore) Delete(ctx context.Context, id uint) error {
	if f.FailDelete {
		return unavailable()
	}
	return f.Store.Delete(ctx, id)
}

func unavailable() error {
	return errors.Join(store.ErrUnavailable, ErrInjected)
}

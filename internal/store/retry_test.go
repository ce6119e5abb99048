package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackit/internal/model"
)

// flakyStore fails the first failures calls of every method with err.
type flakyStore struct {
	err      error
	failures int
	calls    map[string]int
}

func newFlakyStore(failures int, err error) *flakyStore {
	return &flakyStore{err: err, failures: failures, calls: make(map[string]int)}
}

func (f *flakyStore) hit(op string) error {
	f.calls[op]++
	if f.calls[op] <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyStore) Query(ctx context.Context, filters []Filter, order ...Order) ([]model.TaskRecord, error) {
	if err := f.hit("query"); err != nil {
		return nil, err
	}
	return []model.TaskRecord{{ID: 1}}, nil
}

func (f *flakyStore) QueryOne(ctx context.Context, filters []Filter) (*model.TaskRecord, error) {
	if err := f.hit("query_one"); err != nil {
		return nil, err
	}
	return &model.TaskRecord{ID: 1}, nil
}

func (f *flakyStore) Insert(ctx context.Context, rec *model.TaskRecord) error {
	return f.hit("insert")
}

func (f *flakyStore) InsertIfAbsent(ctx context.Context, rec *model.TaskRecord) (bool, error) {
	if err := f.hit("insert_if_absent"); err != nil {
		return false, err
	}
	return true, nil
}

func (f *flakyStore) Update(ctx context.Context, id uint, fields map[string]any) error {
	return f.hit("update")
}

func (f *flakyStore) Delete(ctx context.Context, id uint) error {
	return f.hit("delete")
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var errFlaky = fmt.Errorf("connection reset: %w", ErrUnavailable)

func TestRetrying_RetriesReads(t *testing.T) {
	next := newFlakyStore(2, errFlaky)
	r := NewRetrying(next, 3, time.Millisecond, quietLogger())
	ctx := context.Background()

	recs, err := r.Query(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, 3, next.calls["query"])

	rec, err := r.QueryOne(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, rec)
	assert.Equal(t, 3, next.calls["query_one"])

	created, err := r.InsertIfAbsent(ctx, &model.TaskRecord{})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 3, next.calls["insert_if_absent"])
}

func TestRetrying_GivesUpAfterAttempts(t *testing.T) {
	next := newFlakyStore(5, errFlaky)
	r := NewRetrying(next, 3, time.Millisecond, quietLogger())

	_, err := r.Query(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, 3, next.calls["query"])
}

func TestRetrying_WritesGoThroughOnce(t *testing.T) {
	next := newFlakyStore(1, errFlaky)
	r := NewRetrying(next, 3, time.Millisecond, quietLogger())
	ctx := context.Background()

	assert.Error(t, r.Insert(ctx, &model.TaskRecord{}))
	assert.Error(t, r.Update(ctx, 1, map[string]any{FieldName: "x"}))
	assert.Error(t, r.Delete(ctx, 1))
	assert.Equal(t, 1, next.calls["insert"])
	assert.Equal(t, 1, next.calls["update"])
	assert.Equal(t, 1, next.calls["delete"])
}

func TestRetrying_DoesNotRetryPermanentErrors(t *testing.T) {
	for _, permanent := range []error{ErrNotFound, ErrInvalidFilter, context.Canceled} {
		t.Run(permanent.Error(), func(t *testing.T) {
			next := newFlakyStore(5, fmt.Errorf("wrapped: %w", permanent))
			r := NewRetrying(next, 3, time.Millisecond, quietLogger())

			_, err := r.Query(context.Background(), nil)
			assert.True(t, errors.Is(err, permanent))
			assert.Equal(t, 1, next.calls["query"])
		})
	}
}

func TestRetrying_StopsWhenContextEnds(t *testing.T) {
	next := newFlakyStore(5, errFlaky)
	r := NewRetrying(next, 5, time.Hour, quietLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Query(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, next.calls["query"])
}

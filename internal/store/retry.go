package store

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"trackit/internal/model"
)

const maxRetryDelay = 2 * time.Second

// Retrying retries reads and the conflict-safe insert. Plain inserts, updates and deletes
// go through once: a lost response would otherwise turn into a second write.
type Retrying struct {
	next     Store
	attempts int
	base     time.Duration
	log      logrus.FieldLogger
}

func NewRetrying(next Store, attempts int, base time.Duration, log logrus.FieldLogger) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	return &Retrying{next: next, attempts: attempts, base: base, log: log}
}

func (r *Retrying) Query(ctx context.Context, filters []Filter, order ...Order) ([]model.TaskRecord, error) {
	var recs []model.TaskRecord
	err := r.do(ctx, "query", func() error {
		var err error
		recs, err = r.next.Query(ctx, filters, order...)
		return err
	})
	return recs, err
}

func (r *Retrying) QueryOne(ctx context.Context, filters []Filter) (*model.TaskRecord, error) {
	var rec *model.TaskRecord
	err := r.do(ctx, "query_one", func() error {
		var err error
		rec, err = r.next.QueryOne(ctx, filters)
		return err
	})
	return rec, err
}

func (r *Retrying) InsertIfAbsent(ctx context.Context, rec *model.TaskRecord) (bool, error) {
	var created bool
	err := r.do(ctx, "insert_if_absent", func() error {
		var err error
		created, err = r.next.InsertIfAbsent(ctx, rec)
		return err
	})
	return created, err
}

func (r *Retrying) Insert(ctx context.Context, rec *model.TaskRecord) error {
	return r.next.Insert(ctx, rec)
}

func (r *Retrying) Update(ctx context.Context, id uint, fields map[string]any) error {
	return r.next.Update(ctx, id, fields)
}

func (r *Retrying) Delete(ctx context.Context, id uint) error {
	return r.next.Delete(ctx, id)
}

func (r *Retrying) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if attempt > 0 {
			delay := r.base << (attempt - 1)
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
			r.log.WithFields(logrus.Fields{"op": op, "attempt": attempt + 1, "delay": delay}).
				WithError(err).Warn("retrying store read")
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		err = fn()
		if !retryable(ctx, err) {
			return err
		}
	}
	return err
}

func retryable(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() != nil {
		return false
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidFilter),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

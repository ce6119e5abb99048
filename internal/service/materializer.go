package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"trackit/internal/model"
	"trackit/internal/store"
)

// Materializer makes sure every template that applies to a date has its instance for that
// date. It runs on read; nothing schedules it.
type Materializer struct {
	store store.Store
	log   logrus.FieldLogger
}

func NewMaterializer(st store.Store, log logrus.FieldLogger) *Materializer {
	return &Materializer{store: st, log: log}
}

// EnsureInstances creates the missing instances for day. A soft-deleted instance still
// counts as present, so a deletion for that day sticks.
func (m *Materializer) EnsureInstances(ctx context.Context, day model.Date) error {
	log := m.log.WithFields(logrus.Fields{"run_id": uuid.NewString(), "date": day.String()})

	recs, err := m.store.Query(ctx, []store.Filter{
		store.Eq(store.FieldIsRecurring, true),
		store.Lte(store.FieldDate, day),
	}, store.Asc(store.FieldID))
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	created := 0
	var errs []error
	for _, tmpl := range model.Templates(recs) {
		if !tmpl.AppliesTo(day) {
			continue
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		ok, err := m.ensureOne(ctx, tmpl, day)
		if err != nil {
			log.WithField("template_id", tmpl.ID).WithError(err).Warn("materialize instance")
			errs = append(errs, err)
			continue
		}
		if ok {
			created++
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if created > 0 {
		log.WithField("created", created).Info("materialized recurring tasks")
	} else {
		log.Debug("recurring tasks already materialized")
	}
	return nil
}

func (m *Materializer) ensureOne(ctx context.Context, tmpl model.Template, day model.Date) (bool, error) {
	existing, err := m.store.QueryOne(ctx, []store.Filter{
		store.Eq(store.FieldParentID, tmpl.ID),
		store.Eq(store.FieldDate, day),
	})
	if err != nil {
		return false, fmt.Errorf("find instance of template %d: %w", tmpl.ID, err)
	}
	if existing != nil {
		return false, nil
	}

	rec := tmpl.InstanceRecord(day)
	created, err := m.store.InsertIfAbsent(ctx, &rec)
	if err != nil {
		return false, fmt.Errorf("create instance of template %d: %w", tmpl.ID, err)
	}
	return created, nil
}

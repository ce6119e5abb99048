package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"trackit/internal/model"
	"trackit/internal/store"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Name      string
	Points    float64
	Date      model.Date
	Recurring bool
}

// DeleteMode tells how a task was removed.
type DeleteMode int

const (
	// DeleteSoft hides an instance of a template so it is not materialized again.
	DeleteSoft DeleteMode = iota + 1
	// DeleteHard removes the record.
	DeleteHard
)

func (m DeleteMode) String() string {
	switch m {
	case DeleteSoft:
		return "soft"
	case DeleteHard:
		return "hard"
	default:
		return "none"
	}
}

// TaskService wraps task-related business logic.
type TaskService struct {
	store        store.Store
	materializer *Materializer
	log          logrus.FieldLogger
}

func NewTaskService(st store.Store, log logrus.FieldLogger) *TaskService {
	return &TaskService{
		store:        st,
		materializer: NewMaterializer(st, log),
		log:          log,
	}
}

// CreateTask stores a template when input.Recurring is set, a standalone instance otherwise.
func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (model.Task, error) {
	name, err := ValidateName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := ValidatePoints(input.Points); err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrValidation)
	}

	rec := model.TaskRecord{
		Name:        name,
		Points:      input.Points,
		Date:        input.Date,
		IsRecurring: input.Recurring,
		IsCompleted: false,
		IsVisible:   true,
	}
	if err := s.store.Insert(ctx, &rec); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"task_id":   rec.ID,
		"date":      rec.Date.String(),
		"recurring": rec.IsRecurring,
	}).Info("task created")
	return model.Decode(rec), nil
}

// EnsureAndListTasks materializes recurring tasks for day, then lists the visible
// instances ordered by id. A materializer failure is logged and the list still comes
// back with whatever already exists.
func (s *TaskService) EnsureAndListTasks(ctx context.Context, day model.Date) ([]model.Instance, error) {
	if err := s.materializer.EnsureInstances(ctx, day); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.WithField("date", day.String()).WithError(err).Warn("materialize recurring tasks failed, listing existing tasks")
	}

	recs, err := s.store.Query(ctx, []store.Filter{
		store.Eq(store.FieldDate, day),
		store.Eq(store.FieldIsRecurring, false),
		store.Eq(store.FieldIsVisible, true),
	}, store.Asc(store.FieldID))
	if err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", day, err)
	}
	return model.Instances(recs), nil
}

// ComputeProgress is the per-day aggregate for a listed day.
func (s *TaskService) ComputeProgress(tasks []model.Instance) Progress {
	return ComputeProgress(tasks)
}

// Analytics builds the completed-points series over every date.
func (s *TaskService) Analytics(ctx context.Context) (Analytics, error) {
	recs, err := s.store.Query(ctx, []store.Filter{
		store.Eq(store.FieldIsCompleted, true),
		store.Eq(store.FieldIsRecurring, false),
		store.Eq(store.FieldIsVisible, true),
	}, store.Asc(store.FieldDate))
	if err != nil {
		return Analytics{}, fmt.Errorf("load analytics: %w", err)
	}
	series := BuildSeries(model.Instances(recs))
	return Analytics{Series: series, Summary: Summarize(series)}, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID uint) (model.Task, error) {
	rec, err := s.store.QueryOne(ctx, []store.Filter{store.Eq(store.FieldID, taskID)})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("task %d: %w", taskID, store.ErrNotFound)
	}
	return model.Decode(*rec), nil
}

// ListTemplates returns every recurring template, oldest first.
func (s *TaskService) ListTemplates(ctx context.Context) ([]model.Template, error) {
	recs, err := s.store.Query(ctx, []store.Filter{
		store.Eq(store.FieldIsRecurring, true),
	}, store.Asc(store.FieldDate), store.Asc(store.FieldID))
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return model.Templates(recs), nil
}

// SetCompleted marks a visible instance done or not done.
func (s *TaskService) SetCompleted(ctx context.Context, taskID uint, completed bool) (model.Instance, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return model.Instance{}, err
	}
	inst, ok := task.(model.Instance)
	if !ok {
		return model.Instance{}, fmt.Errorf("task %d: %w", taskID, ErrTemplateHasNoCompletion)
	}
	if !inst.Visible {
		return model.Instance{}, fmt.Errorf("task %d: %w", taskID, store.ErrNotFound)
	}

	if err := s.store.Update(ctx, taskID, map[string]any{store.FieldIsCompleted: completed}); err != nil {
		return model.Instance{}, err
	}
	inst.Completed = completed
	s.log.WithFields(logrus.Fields{"task_id": taskID, "completed": completed}).Info("task completion changed")
	return inst, nil
}

// UpdateDetails renames and re-scores one record. Templates and their instances are
// independent after materialization, so nothing propagates.
func (s *TaskService) UpdateDetails(ctx context.Context, taskID uint, name string, points float64) error {
	clean, err := ValidateName(name)
	if err != nil {
		return err
	}
	if err := ValidatePoints(points); err != nil {
		return err
	}
	if err := s.store.Update(ctx, taskID, map[string]any{
		store.FieldName:   clean,
		store.FieldPoints: points,
	}); err != nil {
		return err
	}
	s.log.WithField("task_id", taskID).Info("task details updated")
	return nil
}

// DeleteTask hides instances of a template and removes everything else. Deleting a
// template leaves its materialized instances as standalone tasks.
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) (DeleteMode, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return 0, err
	}

	if inst, ok := task.(model.Instance); ok && inst.FromTemplate() {
		if err := s.store.Update(ctx, taskID, map[string]any{store.FieldIsVisible: false}); err != nil {
			return 0, err
		}
		s.log.WithField("task_id", taskID).Info("task hidden")
		return DeleteSoft, nil
	}

	if err := s.store.Delete(ctx, taskID); err != nil {
		return 0, err
	}
	s.log.WithField("task_id", taskID).Info("task deleted")
	return DeleteHard, nil
}

// IsNotFound is a convenience for presentation code.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

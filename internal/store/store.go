// Package store defines the record store the task engine runs against. Backends live in
// internal/repository (gorm) and internal/supabase (PostgREST).
package store

import (
	"context"
	"errors"
	"fmt"

	"trackit/internal/model"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrUnavailable   = errors.New("record store unavailable")
	ErrInvalidFilter = errors.New("invalid filter")
)

// Columns of the tasks collection.
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldPoints      = "points"
	FieldDate        = "date"
	FieldIsRecurring = "is_recurring"
	FieldIsCompleted = "is_completed"
	FieldIsVisible   = "is_visible"
	FieldParentID    = "parent_id"
)

var knownFields = map[string]bool{
	FieldID:          true,
	FieldName:        true,
	FieldPoints:      true,
	FieldDate:        true,
	FieldIsRecurring: true,
	FieldIsCompleted: true,
	FieldIsVisible:   true,
	FieldParentID:    true,
}

// CheckField rejects column names outside the tasks collection.
func CheckField(field string) error {
	if !knownFields[field] {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, field)
	}
	return nil
}

// CheckFields validates the keys of a partial update.
func CheckFields(fields map[string]any) error {
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty update", ErrInvalidFilter)
	}
	for field := range fields {
		if field == FieldID {
			return fmt.Errorf("%w: id is immutable", ErrInvalidFilter)
		}
		if err := CheckField(field); err != nil {
			return err
		}
	}
	return nil
}

type Op int

const (
	OpEq Op = iota
	OpLte
	OpIsNull
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpLte:
		return "lte"
	case OpIsNull:
		return "is_null"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Filter is one condition on a column. Filters passed together are ANDed.
type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, value any) Filter  { return Filter{Field: field, Op: OpEq, Value: value} }
func Lte(field string, value any) Filter { return Filter{Field: field, Op: OpLte, Value: value} }
func IsNull(field string) Filter         { return Filter{Field: field, Op: OpIsNull} }

func (f Filter) Validate() error {
	if err := CheckField(f.Field); err != nil {
		return err
	}
	switch f.Op {
	case OpEq, OpLte:
		if f.Value == nil {
			return fmt.Errorf("%w: %s on %q needs a value", ErrInvalidFilter, f.Op, f.Field)
		}
	case OpIsNull:
	default:
		return fmt.Errorf("%w: unsupported operator %s", ErrInvalidFilter, f.Op)
	}
	return nil
}

type Order struct {
	Field string
	Desc  bool
}

func Asc(field string) Order { return Order{Field: field} }

// Store is the tasks collection.
type Store interface {
	Query(ctx context.Context, filters []Filter, order ...Order) ([]model.TaskRecord, error)
	// QueryOne returns nil, nil when no record matches.
	QueryOne(ctx context.Context, filters []Filter) (*model.TaskRecord, error)
	// Insert creates rec and fills in its ID.
	Insert(ctx context.Context, rec *model.TaskRecord) error
	// InsertIfAbsent creates rec unless a record with the same (parent_id, date) exists.
	// It reports whether a row was written; the check and the write are one atomic step.
	InsertIfAbsent(ctx context.Context, rec *model.TaskRecord) (bool, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	// Delete removes the record permanently.
	Delete(ctx context.Context, id uint) error
}

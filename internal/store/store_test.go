package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Validate(t *testing.T) {
	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{"eq", Eq(FieldDate, "2024-01-01"), false},
		{"lte", Lte(FieldDate, "2024-01-01"), false},
		{"is null", IsNull(FieldParentID), false},
		{"unknown field", Eq("title", "x"), true},
		{"eq without value", Eq(FieldName, nil), true},
		{"unknown op", Filter{Field: FieldName, Op: Op(9), Value: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.filter.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFilter)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCheckFields(t *testing.T) {
	assert.NoError(t, CheckFields(map[string]any{FieldIsVisible: false}))
	assert.ErrorIs(t, CheckFields(nil), ErrInvalidFilter)
	assert.ErrorIs(t, CheckFields(map[string]any{FieldID: uint(2)}), ErrInvalidFilter)
	assert.ErrorIs(t, CheckFields(map[string]any{"deleted_at": nil}), ErrInvalidFilter)
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "eq", OpEq.String())
	assert.Equal(t, "lte", OpLte.String())
	assert.Equal(t, "is_null", OpIsNull.String())
	assert.Equal(t, "op(7)", Op(7).String())
}

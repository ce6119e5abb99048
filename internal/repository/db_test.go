package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{":memory:", "file::memory:?_foreign_keys=1"},
		{"trackit.db", "trackit.db?_foreign_keys=1"},
		{"file:data/trackit.db?cache=shared", "file:data/trackit.db?cache=shared&_foreign_keys=1"},
		{"trackit.db?_foreign_keys=0", "trackit.db?_foreign_keys=0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sqliteDSN(tt.in))
		})
	}
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, isPostgres("postgres://user@localhost/trackit"))
	assert.True(t, isPostgres("postgresql://user@localhost/trackit"))
	assert.False(t, isPostgres("trackit.db"))
	assert.False(t, isPostgres(":memory:"))
}

package testutil

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"trackit/internal/repository"
)

// NewTestLogger returns a logger that discards output.
func NewTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// NewTestStore creates an in-memory SQLite tasks store with migrations applied.
// The database is closed when the test completes.
func NewTestStore(t *testing.T) *repository.TaskRepository {
	t.Helper()
	db, err := repository.NewDB(":memory:", NewTestLogger())
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewTaskRepository(db)
}

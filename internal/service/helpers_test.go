package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"trackit/internal/model"
	"trackit/internal/store"
	"trackit/internal/testutil"
)

// instancesOf returns every instance of the template on day, hidden ones included.
func instancesOf(t *testing.T, st store.Store, templateID uint, day model.Date) []model.TaskRecord {
	t.Helper()
	recs, err := st.Query(context.Background(), []store.Filter{
		store.Eq(store.FieldParentID, templateID),
		store.Eq(store.FieldDate, day),
	})
	require.NoError(t, err)
	return recs
}

func newTestService(t *testing.T) (*TaskService, store.Store) {
	t.Helper()
	st := testutil.NewTestStore(t)
	return NewTaskService(st, testutil.NewTestLogger()), st
}

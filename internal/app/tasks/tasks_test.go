package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/database"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type stubStore struct {
	database.Store

	mu          sync.Mutex
	cutoffs     []time.Time
	deleted     int64
	deleteErr   error
	maintenance int
	maintErr    error
}

func (s *stubStore) DeleteExchangesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.deleted, s.deleteErr
}

func (s *stubStore) RunSQLMaintenance(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.maintenance++
	return s.maintErr
}

var now = time.Date(2025, time.November, 10, 3, 0, 0, 0, time.UTC)

func deps(t *testing.T, store *stubStore, retentionDays int) TaskDeps {
	t.Helper()
	return TaskDeps{
		Logger: zaptest.NewLogger(t),
		Store:  store,
		Config: config.DatabaseConfig{RetentionDays: retentionDays},
		Now:    func() time.Time { return now },
	}
}

func TestRegisterAllTasks(t *testing.T) {
	got := RegisterAllTasks(deps(t, &stubStore{}, 30))

	assert.Len(t, got, 2)
	assert.Contains(t, got, config.TaskExchangeRetention)
	assert.Contains(t, got, config.TaskSQLMaintenance)
}

func TestExchangeRetentionTask(t *testing.T) {
	store := &stubStore{deleted: 4}
	task := newExchangeRetentionTask(deps(t, store, 30))

	require.NoError(t, task(context.Background()))
	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, now.Add(-30*24*time.Hour), store.cutoffs[0])
}

func TestExchangeRetentionTaskDisabled(t *testing.T) {
	store := &stubStore{}
	task := newExchangeRetentionTask(deps(t, store, 0))

	require.NoError(t, task(context.Background()))
	assert.Empty(t, store.cutoffs)
}

func TestExchangeRetentionTaskError(t *testing.T) {
	store := &stubStore{deleteErr: errors.New("locked")}
	task := newExchangeRetentionTask(deps(t, store, 7))

	err := task(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "locked")
}

func TestSQLMaintenanceTask(t *testing.T) {
	store := &stubStore{}
	task := newSQLMaintenanceTask(deps(t, store, 30))
	require.NoError(t, task(context.Background()))
	assert.Equal(t, 1, store.maintenance)

	store.maintErr = errors.New("disk I/O error")
	err := task(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, store.maintErr)
}

package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "gym.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// The queue gets its own database next to the main one
	tasksDBPath := filepath.Join(tmpDir, "gym-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "gym.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)

	// Give it time to start
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

// fakeCloser records the date it was invoked with.
type fakeCloser struct {
	today  chan string
	closed int64
	err    error
}

func (f *fakeCloser) CloseStale(today string) (int64, error) {
	f.today <- today
	return f.closed, f.err
}

func TestCloseStaleVisitsExecution(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "gym.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	closer := &fakeCloser{today: make(chan string, 1), closed: 2}
	client.Register(NewCloseStaleVisitsQueue(closer))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	ids, err := client.Add(CloseStaleVisitsTask{}).Save()
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	select {
	case today := <-closer.today:
		assert.Equal(t, time.Now().Format("2006-01-02"), today)
	case <-time.After(5 * time.Second):
		t.Fatal("task was not executed within timeout")
	}
}

type fakeExpirer struct {
	err error
}

func (f *fakeExpirer) DeactivateExpired(string) (int64, error) {
	return 0, f.err
}

func TestProcessorsRequireDependencies(t *testing.T) {
	ctx := context.Background()

	err := CloseStaleVisitsProcessor(nil)(ctx, CloseStaleVisitsTask{})
	assert.Error(t, err)

	err = ExpireMembershipsProcessor(nil)(ctx, ExpireMembershipsTask{})
	assert.Error(t, err)

	// Repository failures surface as task errors for backlite to retry
	failing := &fakeExpirer{err: errors.New("database locked")}
	err = ExpireMembershipsProcessor(failing)(ctx, ExpireMembershipsTask{})
	assert.Error(t, err)

	err = ExpireMembershipsProcessor(&fakeExpirer{})(ctx, ExpireMembershipsTask{})
	assert.NoError(t, err)
}

func TestCloseStaleVisitsTaskConfig(t *testing.T) {
	cfg := CloseStaleVisitsTask{}.Config()

	assert.Equal(t, "close_stale_visits", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Minute, cfg.Backoff)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestExpireMembershipsTaskConfig(t *testing.T) {
	cfg := ExpireMembershipsTask{}.Config()

	assert.Equal(t, "expire_memberships", cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotNil(t, cfg.Retention)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, 15*time.Minute, cfg.ReleaseAfter)
	assert.Equal(t, time.Hour, cfg.CleanupInterval)
	assert.Equal(t, 24*time.Hour, cfg.RetentionDuration)
}

package scheduler

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/titangym/gymdesk/internal/config"
)

func TestMaintenanceScheduler_Disabled(t *testing.T) {
	s := NewMaintenanceScheduler(nil, config.Maintenance{Enabled: false})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestMaintenanceScheduler_StartStop(t *testing.T) {
	cfg := config.Maintenance{Enabled: true, Schedule: "10 0 * * *"}
	s := NewMaintenanceScheduler(nil, cfg)

	before := runtime.NumGoroutine()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.True(t, next.After(time.Now()))

	// Starting twice is a no-op
	require.NoError(t, s.Start(ctx))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())

	// Double stop is safe
	s.Stop()

	// Stop releases the cron worker and the context watcher
	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.LessOrEqual(t, runtime.NumGoroutine(), before)
}

func TestMaintenanceScheduler_StopsWithParentContext(t *testing.T) {
	cfg := config.Maintenance{Enabled: true, Schedule: "10 0 * * *"}
	s := NewMaintenanceScheduler(nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	require.True(t, s.IsRunning())

	cancel()

	assert.Eventually(t, func() bool {
		return !s.IsRunning()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestMaintenanceScheduler_RejectsBadSchedule(t *testing.T) {
	cfg := config.Maintenance{Enabled: true, Schedule: "not a cron expression"}
	s := NewMaintenanceScheduler(nil, cfg)

	err := s.Start(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsRunning())
}

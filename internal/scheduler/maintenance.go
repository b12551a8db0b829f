package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/titangym/gymdesk/internal/config"
	"github.com/titangym/gymdesk/internal/tasks"
)

// MaintenanceScheduler enqueues the nightly housekeeping tasks: closing
// visits left open overnight and deactivating expired memberships.
type MaintenanceScheduler struct {
	taskClient *tasks.Client
	config     config.Maintenance

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance
func NewMaintenanceScheduler(taskClient *tasks.Client, cfg config.Maintenance) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		taskClient: taskClient,
		config:     cfg,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if maintenance is enabled
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.config.Enabled {
		log.Printf("Maintenance scheduler: disabled")
		return nil
	}

	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.runMaintenance()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule maintenance job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Maintenance scheduler: started with schedule '%s'. Next run: %v",
		s.config.Schedule, s.nextRunLocked())

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Maintenance scheduler: stopped")
}

// RunNow enqueues both maintenance tasks immediately
func (s *MaintenanceScheduler) RunNow() {
	go s.runMaintenance()
}

// IsRunning returns whether the scheduler is active
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next maintenance run will occur
func (s *MaintenanceScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *MaintenanceScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runMaintenance enqueues the housekeeping tasks on the shared task queue
func (s *MaintenanceScheduler) runMaintenance() {
	log.Printf("Maintenance: enqueueing nightly tasks")

	if _, err := s.taskClient.Add(tasks.CloseStaleVisitsTask{}).Save(); err != nil {
		log.Printf("Maintenance: failed to enqueue stale visit cleanup: %v", err)
	}
	if _, err := s.taskClient.Add(tasks.ExpireMembershipsTask{}).Save(); err != nil {
		log.Printf("Maintenance: failed to enqueue membership expiry: %v", err)
	}
}

package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// VisitCloser closes visits that were left open on a previous day.
type VisitCloser interface {
	CloseStale(today string) (int64, error)
}

// CloseStaleVisitsTask closes visits whose check-in day has passed without
// a check-out scan, as if the client left at the end of that day.
type CloseStaleVisitsTask struct{}

// Config returns the queue configuration for stale-visit cleanup.
func (t CloseStaleVisitsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "close_stale_visits",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CloseStaleVisitsProcessor creates a processor for CloseStaleVisitsTask.
func CloseStaleVisitsProcessor(closer VisitCloser) backlite.QueueProcessor[CloseStaleVisitsTask] {
	return func(ctx context.Context, task CloseStaleVisitsTask) error {
		if closer == nil {
			return fmt.Errorf("visit closer not configured")
		}

		today := time.Now().Format("2006-01-02")
		closed, err := closer.CloseStale(today)
		if err != nil {
			return fmt.Errorf("close stale visits: %w", err)
		}

		log.Printf("[TASK] Closed %d visits left open before %s", closed, today)
		return nil
	}
}

// NewCloseStaleVisitsQueue creates a backlite queue for stale-visit cleanup.
func NewCloseStaleVisitsQueue(closer VisitCloser) backlite.Queue {
	return backlite.NewQueue(CloseStaleVisitsProcessor(closer))
}

package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// MembershipExpirer deactivates clients whose membership end date passed.
type MembershipExpirer interface {
	DeactivateExpired(today string) (int64, error)
}

// ExpireMembershipsTask flips the membership flag off for clients whose
// end date is strictly before today, so roster listings and analytics
// agree with the check-in gate.
type ExpireMembershipsTask struct{}

// Config returns the queue configuration for membership expiry.
func (t ExpireMembershipsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "expire_memberships",
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

// ExpireMembershipsProcessor creates a processor for ExpireMembershipsTask.
func ExpireMembershipsProcessor(expirer MembershipExpirer) backlite.QueueProcessor[ExpireMembershipsTask] {
	return func(ctx context.Context, task ExpireMembershipsTask) error {
		if expirer == nil {
			return fmt.Errorf("membership expirer not configured")
		}

		today := time.Now().Format("2006-01-02")
		expired, err := expirer.DeactivateExpired(today)
		if err != nil {
			return fmt.Errorf("expire memberships: %w", err)
		}

		log.Printf("[TASK] Deactivated %d memberships expired before %s", expired, today)
		return nil
	}
}

// NewExpireMembershipsQueue creates a backlite queue for membership expiry.
func NewExpireMembershipsQueue(expirer MembershipExpirer) backlite.Queue {
	return backlite.NewQueue(ExpireMembershipsProcessor(expirer))
}

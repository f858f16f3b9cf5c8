package runstate

import (
	"context"

	"github.com/promptops/experiment-hub/internal/models"
)

// Tracker guards experiment runs against concurrent duplicates and keeps
// the last run's report around for the dashboard.
type Tracker interface {
	// TryAcquire takes the run lock for an experiment. false means a run
	// is already in flight.
	TryAcquire(ctx context.Context, experimentID int64) (bool, error)
	Release(ctx context.Context, experimentID int64) error
	SetLastRun(ctx context.Context, experimentID int64, report models.RunReport) error
	// LastRun returns nil when no run has been recorded.
	LastRun(ctx context.Context, experimentID int64) (*models.RunReport, error)
}

// NopTracker is used when no Redis is configured: runs proceed unguarded.
type NopTracker struct{}

func (NopTracker) TryAcquire(ctx context.Context, experimentID int64) (bool, error) {
	return true, nil
}

func (NopTracker) Release(ctx context.Context, experimentID int64) error {
	return nil
}

func (NopTracker) SetLastRun(ctx context.Context, experimentID int64, report models.RunReport) error {
	return nil
}

func (NopTracker) LastRun(ctx context.Context, experimentID int64) (*models.RunReport, error) {
	return nil, nil
}

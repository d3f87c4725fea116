package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"
)

// OrgLister enumerates organizations worth warming.
type OrgLister interface {
	ActiveOrgIDs(ctx context.Context) ([]string, error)
}

// Warmer precomputes one organization's aggregates into the cache.
type Warmer interface {
	Warm(ctx context.Context, orgID string) error
}

// DashboardWarmupJob refreshes cached dashboard aggregates for every active
// organization so first readers after expiry hit fresh entries.
type DashboardWarmupJob struct {
	Orgs      OrgLister
	Dashboard Warmer
	Logger    *slog.Logger
}

// NewDashboardWarmupJob initialises the warmup handler.
func NewDashboardWarmupJob(orgs OrgLister, dash Warmer, logger *slog.Logger) *DashboardWarmupJob {
	return &DashboardWarmupJob{Orgs: orgs, Dashboard: dash, Logger: logger}
}

// Handle executes the warmup sweep. Per-organization failures are logged
// and skipped so one broken tenant does not starve the rest.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Orgs == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	orgIDs, err := j.Orgs.ActiveOrgIDs(ctx)
	if err != nil {
		return err
	}
	warmed := 0
	for _, orgID := range orgIDs {
		if err := j.Dashboard.Warm(ctx, orgID); err != nil {
			if j.Logger != nil {
				j.Logger.Warn("dashboard warmup failed",
					slog.String("org_id", orgID),
					slog.Any("error", err))
			}
			continue
		}
		warmed++
	}
	if j.Logger != nil {
		j.Logger.Info("dashboard warmup complete", slog.Int("warmed", warmed))
	}
	return nil
}

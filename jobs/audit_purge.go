package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// AuditPurger is the repository surface the purge job needs.
type AuditPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// AuditPurgeJob removes audit events older than the retention window.
type AuditPurgeJob struct {
	Audit  AuditPurger
	Logger *slog.Logger
	clock  func() time.Time
}

// NewAuditPurgeJob initialises the purge handler.
func NewAuditPurgeJob(audit AuditPurger, logger *slog.Logger) *AuditPurgeJob {
	return &AuditPurgeJob{
		Audit:  audit,
		Logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the purge.
func (j *AuditPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Audit == nil {
		return errors.New("audit purge: handler not configured")
	}
	var payload AuditPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = 365
	}

	cutoff := j.clock().AddDate(0, 0, -payload.RetentionDays)
	removed, err := j.Audit.PurgeBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	if j.Logger != nil {
		j.Logger.Info("audit purge complete",
			slog.Time("cutoff", cutoff),
			slog.Int64("removed", removed))
	}
	return nil
}

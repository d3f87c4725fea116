// Package jobs defines the background tasks processed by the worker.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditPurge removes audit events past their retention window.
	TaskAuditPurge = "audit:purge"
	// TaskDashboardWarmup precomputes dashboard aggregates into the cache.
	TaskDashboardWarmup = "dashboard:warmup"
)

// AuditPurgePayload configures one retention purge run.
type AuditPurgePayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewAuditPurgeTask constructs an Asynq task.
func NewAuditPurgeTask(payload AuditPurgePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditPurge, data), nil
}

// NewDashboardWarmupTask constructs an Asynq task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}

// Package audit keeps an append-only trail of tenant-scoped mutations.
package audit

import (
	"context"
	"time"
)

// Event is one recorded mutation.
type Event struct {
	ID         string         `json:"id"`
	OrgID      string         `json:"organizationId"`
	ActorID    string         `json:"actorId"`
	Action     string         `json:"action"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Recorder persists audit events. Write handlers call it after a mutation.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// ListFilter narrows an audit listing.
type ListFilter struct {
	Action string
	Limit  int
	Offset int
}

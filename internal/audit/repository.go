package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/veridian-grc/veridian/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence for audit events. It
// accepts any db.Querier, so events can be recorded through the pool or
// inside an enclosing transaction.
type Repository struct {
	q db.Querier
}

// NewRepository constructs a repository.
func NewRepository(q db.Querier) *Repository {
	return &Repository{q: q}
}

// Record implements Recorder.
func (r *Repository) Record(ctx context.Context, event Event) error {
	if event.OrgID == "" || event.Action == "" || event.EntityType == "" || event.EntityID == "" {
		return errors.New("audit: event requires org/action/entity_type/entity_id")
	}
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO audit_events (id, organization_id, actor_id, action, entity_type, entity_id, meta, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		event.ID, event.OrgID, event.ActorID, event.Action, event.EntityType, event.EntityID, metaJSON, event.CreatedAt)
	return err
}

// List returns one offset page of the organization's events, newest first,
// plus the total count for that organization and filter.
func (r *Repository) List(ctx context.Context, orgID string, filter ListFilter) ([]Event, int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM audit_events
		WHERE organization_id = $1 AND ($2 = '' OR action = $2)`,
		orgID, filter.Action).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, organization_id, actor_id, action, entity_type, entity_id, meta, created_at
		FROM audit_events
		WHERE organization_id = $1 AND ($2 = '' OR action = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		orgID, filter.Action, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var event Event
		var metaJSON []byte
		if err := rows.Scan(&event.ID, &event.OrgID, &event.ActorID, &event.Action, &event.EntityType, &event.EntityID, &metaJSON, &event.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &event.Meta)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// PurgeBefore deletes events older than the cutoff across all organizations
// and returns how many rows were removed.
func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM audit_events WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

package dashboard

import (
	"context"

	"github.com/veridian-grc/veridian/internal/platform/db"
)

// PGRepository computes dashboard aggregates straight from PostgreSQL. It
// accepts any db.Querier, so aggregates can be read through the pool or
// inside an enclosing transaction.
type PGRepository struct {
	q db.Querier
}

// NewPGRepository constructs a repository.
func NewPGRepository(q db.Querier) *PGRepository {
	return &PGRepository{q: q}
}

// Stats implements Repository with a single grouped scan per table, both
// scoped to the organization.
func (r *PGRepository) Stats(ctx context.Context, orgID string) (Stats, error) {
	var stats Stats
	err := r.q.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'compliant'),
			COUNT(*) FILTER (WHERE status = 'at_risk'),
			COUNT(*) FILTER (WHERE status = 'non_compliant'),
			COUNT(*) FILTER (WHERE status = 'pending_review')
		FROM compliance_systems
		WHERE organization_id = $1 AND deleted_at IS NULL`,
		orgID).Scan(&stats.TotalSystems, &stats.Compliant, &stats.AtRisk, &stats.NonCompliant, &stats.PendingReview)
	if err != nil {
		return Stats{}, err
	}

	err = r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM audit_events
		WHERE organization_id = $1 AND created_at >= NOW() - INTERVAL '30 days'`,
		orgID).Scan(&stats.AuditEventsLast30d)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// ActiveOrgIDs lists organizations with at least one registered system,
// used by the warmup job.
func (r *PGRepository) ActiveOrgIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT organization_id FROM compliance_systems WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

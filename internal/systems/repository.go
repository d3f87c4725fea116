package systems

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/veridian-grc/veridian/internal/pagination"
	"github.com/veridian-grc/veridian/internal/platform/db"
	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/shared"
)

const pgUniqueViolation = "23505"

// PGRepository provides PostgreSQL backed persistence for systems.
//
// Every predicate combines the row id with the organization id. A write
// that pairs a valid id with the wrong organization therefore affects zero
// rows; tenant isolation is a filtering property of each query, not a
// guard that raises.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const systemColumns = `id, organization_id, name, category, criticality, status, owner, created_at, updated_at`

// Insert stores a new system.
func (r *PGRepository) Insert(ctx context.Context, s *System) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO compliance_systems (id, organization_id, name, category, criticality, status, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.OrgID, s.Name, s.Category, s.Criticality, s.Status, s.Owner, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return httpx.ErrDuplicate
		}
		return err
	}
	return nil
}

// Get fetches one system scoped to the organization.
func (r *PGRepository) Get(ctx context.Context, orgID, id string) (*System, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+systemColumns+`
		FROM compliance_systems
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`,
		id, orgID)
	s, err := scanSystem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List fetches up to fetch rows of the organization's systems ordered by
// created_at and id in the declared sort order, applying the cursor
// condition when one was supplied. Callers pass fetch = limit+1 to detect a
// next page.
func (r *PGRepository) List(ctx context.Context, orgID string, filter ListFilter, fetch int, cond pagination.Condition) ([]System, error) {
	op := pagination.ComparisonOperator(pagination.Descending, cond.Direction)

	query := `
		SELECT ` + systemColumns + `
		FROM compliance_systems
		WHERE organization_id = $1 AND deleted_at IS NULL
		  AND ($2 = '' OR status = $2)
		  AND ($3 = '' OR category = $3)`
	args := []any{orgID, filter.Status, filter.Category}

	if cond.Cursor != nil {
		sortValue, ok := cond.Cursor.SortValue.(time.Time)
		if ok {
			args = append(args, sortValue, cond.Cursor.TieBreakID)
			query += fmt.Sprintf(` AND (created_at, id) %s ($%d, $%d)`, op, len(args)-1, len(args))
		}
	}

	order := "DESC"
	if cond.Direction == pagination.Backward {
		order = "ASC"
	}
	args = append(args, fetch)
	query += fmt.Sprintf(` ORDER BY created_at %s, id %s LIMIT $%d`, order, order, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var systems []System
	for rows.Next() {
		s, err := scanSystem(rows)
		if err != nil {
			return nil, err
		}
		systems = append(systems, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return systems, nil
}

// Update rewrites the mutable fields of a system inside a transaction,
// locking the row first so concurrent status transitions serialize. It
// returns the number of rows affected; zero means the system does not exist
// in that organization.
func (r *PGRepository) Update(ctx context.Context, s *System) (int64, error) {
	var affected int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `
			SELECT id FROM compliance_systems
			WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL
			FOR UPDATE`,
			s.ID, s.OrgID).Scan(&id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE compliance_systems
			SET name = $3, category = $4, criticality = $5, status = $6, owner = $7, updated_at = $8
			WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`,
			s.ID, s.OrgID, s.Name, s.Category, s.Criticality, s.Status, s.Owner, s.UpdatedAt)
		if err != nil {
			return err
		}
		affected = tag.RowsAffected()
		return nil
	})
	return affected, err
}

// SoftDelete marks a system archived and returns the rows affected.
func (r *PGRepository) SoftDelete(ctx context.Context, orgID, id string, at time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE compliance_systems
		SET deleted_at = $3, updated_at = $3
		WHERE id = $1 AND organization_id = $2 AND deleted_at IS NULL`,
		id, orgID, at)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanSystem(row pgx.Row) (*System, error) {
	var s System
	if err := row.Scan(&s.ID, &s.OrgID, &s.Name, &s.Category, &s.Criticality, &s.Status, &s.Owner, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

package systems

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/veridian-grc/veridian/internal/audit"
	"github.com/veridian-grc/veridian/internal/cache"
	"github.com/veridian-grc/veridian/internal/dashboard"
	"github.com/veridian-grc/veridian/internal/pagination"
	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/shared"
)

// Repository is the persistence surface the service needs.
type Repository interface {
	Insert(ctx context.Context, s *System) error
	Get(ctx context.Context, orgID, id string) (*System, error)
	List(ctx context.Context, orgID string, filter ListFilter, fetch int, cond pagination.Condition) ([]System, error)
	Update(ctx context.Context, s *System) (int64, error)
	SoftDelete(ctx context.Context, orgID, id string, at time.Time) (int64, error)
}

// Input carries the mutable fields of a system.
type Input struct {
	Name        string
	Category    string
	Criticality string
	Status      Status
	Owner       string
}

// Service coordinates system reads and writes: reads go through the cache,
// writes record audit events and invalidate the affected namespaces.
type Service struct {
	repo   Repository
	cache  *cache.Cache
	audit  audit.Recorder
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a systems service.
func NewService(repo Repository, c *cache.Cache, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  c,
		audit:  recorder,
		logger: logger,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// List returns one cursor page of the organization's systems.
func (s *Service) List(ctx context.Context, orgID string, filter ListFilter) (pagination.CursorResult[System], error) {
	limit := pagination.ClampLimit(filter.Limit)
	cond := pagination.CursorCondition(filter.Cursor, pagination.Forward)

	key := cache.Key("systems", "list", orgID, cache.ParamHash(map[string]any{
		"status":   filter.Status,
		"category": filter.Category,
		"cursor":   filter.Cursor,
		"limit":    limit,
	}))
	return cache.Cached(ctx, s.cache, key, cache.List, func(ctx context.Context) (pagination.CursorResult[System], error) {
		items, err := s.repo.List(ctx, orgID, filter, limit+1, cond)
		if err != nil {
			return pagination.CursorResult[System]{}, err
		}
		return pagination.BuildCursorResult(items, limit,
			func(sys System) any { return sys.CreatedAt },
			func(sys System) string { return sys.ID },
			cond.Cursor != nil, nil), nil
	})
}

// Get returns one system by id within the organization.
func (s *Service) Get(ctx context.Context, orgID, id string) (*System, error) {
	key := cache.Key("systems", "entity", orgID, id)
	return cache.Cached(ctx, s.cache, key, cache.Entity, func(ctx context.Context) (*System, error) {
		return s.repo.Get(ctx, orgID, id)
	})
}

// Create registers a new system for the acting principal's organization.
func (s *Service) Create(ctx context.Context, tc *shared.TenantContext, input Input) (*System, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	now := s.now()
	sys := &System{
		ID:          ulid.Make().String(),
		OrgID:       tc.OrgID,
		Name:        input.Name,
		Category:    input.Category,
		Criticality: input.Criticality,
		Status:      input.Status,
		Owner:       input.Owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, sys); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, tc, "system.created", sys.ID, map[string]any{"name": sys.Name})
	s.invalidate(ctx, tc.OrgID)
	return sys, nil
}

// Update rewrites a system's mutable fields. A zero-row update, including a
// cross-tenant id, surfaces as not found.
func (s *Service) Update(ctx context.Context, tc *shared.TenantContext, id string, input Input) (*System, error) {
	if err := validateInput(&input); err != nil {
		return nil, err
	}
	sys := &System{
		ID:          id,
		OrgID:       tc.OrgID,
		Name:        input.Name,
		Category:    input.Category,
		Criticality: input.Criticality,
		Status:      input.Status,
		Owner:       input.Owner,
		UpdatedAt:   s.now(),
	}
	affected, err := s.repo.Update(ctx, sys)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, shared.ErrNotFound
	}
	s.recordAudit(ctx, tc, "system.updated", id, map[string]any{"status": string(input.Status)})
	s.invalidate(ctx, tc.OrgID)
	return s.Get(ctx, tc.OrgID, id)
}

// Delete archives a system via soft delete so findings and audit history
// stay intact.
func (s *Service) Delete(ctx context.Context, tc *shared.TenantContext, id string) error {
	affected, err := s.repo.SoftDelete(ctx, tc.OrgID, id, s.now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return shared.ErrNotFound
	}
	s.recordAudit(ctx, tc, "system.archived", id, nil)
	s.invalidate(ctx, tc.OrgID)
	return nil
}

// InvalidateCache removes every cached systems read for one organization and
// returns the number of entries removed.
func InvalidateCache(ctx context.Context, c *cache.Cache, orgID string) int {
	return c.DeletePattern(ctx, cache.Key("systems", "*", orgID, "*"))
}

func (s *Service) invalidate(ctx context.Context, orgID string) {
	InvalidateCache(ctx, s.cache, orgID)
	// System mutations also stale the dashboard aggregates.
	dashboard.Invalidate(ctx, s.cache, orgID)
}

func (s *Service) recordAudit(ctx context.Context, tc *shared.TenantContext, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	err := s.audit.Record(ctx, audit.Event{
		OrgID:      tc.OrgID,
		ActorID:    tc.PrincipalID,
		Action:     action,
		EntityType: "system",
		EntityID:   entityID,
		Meta:       meta,
		CreatedAt:  s.now(),
	})
	if err != nil && s.logger != nil {
		s.logger.Error("record audit event", slog.String("action", action), slog.Any("error", err))
	}
}

func validateInput(input *Input) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return fmt.Errorf("systems: name required: %w", httpx.ErrValidation)
	}
	if input.Status == "" {
		input.Status = StatusPendingReview
	}
	if !input.Status.Valid() {
		return fmt.Errorf("systems: unknown status %q: %w", input.Status, httpx.ErrValidation)
	}
	return nil
}

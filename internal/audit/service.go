package audit

import (
	"context"
	"errors"

	"github.com/veridian-grc/veridian/internal/pagination"
)

// Lister is the repository surface the read side needs.
type Lister interface {
	List(ctx context.Context, orgID string, filter ListFilter) ([]Event, int, error)
}

// Result is one offset page of audit events with paging controls.
type Result struct {
	pagination.OffsetResult[Event]
	PageInfo pagination.PageInfo `json:"pageInfo"`
}

// Service coordinates audit listings.
type Service struct {
	repo Lister
}

// NewService constructs an audit service.
func NewService(repo Lister) *Service {
	return &Service{repo: repo}
}

// List returns one page of the organization's audit trail. Offset
// pagination is kept here for legacy clients; the trail is append-only and
// newest-first, so drift under concurrent writes only pushes rows forward.
func (s *Service) List(ctx context.Context, orgID string, filter ListFilter) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	filter.Limit = pagination.ClampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	events, total, err := s.repo.List(ctx, orgID, filter)
	if err != nil {
		return Result{}, err
	}
	return Result{
		OffsetResult: pagination.BuildOffsetResult(events, total, filter.Limit, filter.Offset),
		PageInfo:     pagination.PageNumbers(total, filter.Limit, filter.Offset),
	}, nil
}

// Package dashboard serves per-organization compliance aggregates.
package dashboard

import (
	"context"

	"github.com/veridian-grc/veridian/internal/cache"
)

// Stats is the per-organization compliance overview.
type Stats struct {
	TotalSystems       int `json:"totalSystems"`
	Compliant          int `json:"compliant"`
	AtRisk             int `json:"atRisk"`
	NonCompliant       int `json:"nonCompliant"`
	PendingReview      int `json:"pendingReview"`
	AuditEventsLast30d int `json:"auditEventsLast30d"`
}

// Repository is the aggregate query surface.
type Repository interface {
	Stats(ctx context.Context, orgID string) (Stats, error)
}

// Service serves dashboard aggregates through the cache. The aggregates are
// volatile, so they ride the short Dashboard preset and are invalidated by
// system mutations.
type Service struct {
	repo  Repository
	cache *cache.Cache
}

// NewService constructs a dashboard service.
func NewService(repo Repository, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// Stats returns the organization's compliance overview.
func (s *Service) Stats(ctx context.Context, orgID string) (Stats, error) {
	key := cache.Key("dashboard", "stats", orgID)
	return cache.Cached(ctx, s.cache, key, cache.Dashboard, func(ctx context.Context) (Stats, error) {
		return s.repo.Stats(ctx, orgID)
	})
}

// Warm precomputes the organization's aggregates into the cache so first
// readers after an invalidation hit a fresh entry.
func (s *Service) Warm(ctx context.Context, orgID string) error {
	stats, err := s.repo.Stats(ctx, orgID)
	if err != nil {
		return err
	}
	s.cache.Set(ctx, cache.Key("dashboard", "stats", orgID), stats, cache.Dashboard)
	return nil
}

// Invalidate removes every cached dashboard read for one organization and
// returns the number of entries removed.
func Invalidate(ctx context.Context, c *cache.Cache, orgID string) int {
	n := c.DeletePattern(ctx, cache.Key("dashboard", "*", orgID))
	n += c.DeletePattern(ctx, cache.Key("dashboard", "*", orgID, "*"))
	return n
}

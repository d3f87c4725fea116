package ratelimit_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-grc/veridian/internal/ratelimit"
	"github.com/veridian-grc/veridian/internal/shared"
)

func limitedRequest(t *testing.T, handler http.Handler, tc *shared.TenantContext) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if tc != nil {
		req = req.WithContext(shared.ContextWithTenant(req.Context(), tc))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func okHandler(reached *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*reached++
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareDenies(t *testing.T) {
	cfg := ratelimit.Config{ratelimit.ClassMutation: {Limit: 2, Window: time.Minute}}
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg)
	var reached int
	handler := ratelimit.Middleware(limiter, ratelimit.ClassMutation)(okHandler(&reached))
	tc := &shared.TenantContext{PrincipalID: "user-1", OrgID: "org-1", Role: shared.RoleOrgAdmin}

	for i := 0; i < 2; i++ {
		rec := limitedRequest(t, handler, tc)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 2, reached)

	rec := limitedRequest(t, handler, tc)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 2, reached, "denied request must not reach the handler")
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "mutation")
}

func TestMiddlewareUnauthenticated(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.DefaultConfig())
	var reached int
	handler := ratelimit.Middleware(limiter, ratelimit.ClassQuery)(okHandler(&reached))

	rec := limitedRequest(t, handler, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, reached)
}

func TestMiddlewareSkip(t *testing.T) {
	cfg := ratelimit.Config{ratelimit.ClassQuery: {Limit: 1, Window: time.Minute}}
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg)
	var reached int
	handler := ratelimit.Middleware(limiter, ratelimit.ClassQuery,
		ratelimit.WithSkip(func(r *http.Request) bool { return true }),
	)(okHandler(&reached))
	tc := &shared.TenantContext{PrincipalID: "exempt-1", OrgID: "org-1", Role: shared.RoleOrgAdmin}

	for i := 0; i < 5; i++ {
		rec := limitedRequest(t, handler, tc)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 5, reached)

	st, err := limiter.Status(context.Background(), "exempt-1", ratelimit.ClassQuery)
	require.NoError(t, err)
	assert.Nil(t, st, "skipped requests must not create windows")
}

type failingStore struct{}

func (failingStore) Take(ctx context.Context, key string, limit int, window time.Duration, now time.Time) (ratelimit.Window, bool, error) {
	return ratelimit.Window{}, false, errors.New("store down")
}

func (failingStore) Peek(ctx context.Context, key string, now time.Time) (*ratelimit.Window, error) {
	return nil, errors.New("store down")
}

func (failingStore) Remove(ctx context.Context, keys ...string) error { return errors.New("store down") }
func (failingStore) Clear(ctx context.Context) error                  { return errors.New("store down") }

func TestMiddlewareFailsOpen(t *testing.T) {
	limiter := ratelimit.New(failingStore{}, ratelimit.DefaultConfig())
	var reached int
	handler := ratelimit.Middleware(limiter, ratelimit.ClassQuery)(okHandler(&reached))
	tc := &shared.TenantContext{PrincipalID: "user-1", OrgID: "org-1", Role: shared.RoleViewer}

	rec := limitedRequest(t, handler, tc)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, reached)
}

type recordingMetrics struct {
	allowed int
	denied  int
}

func (m *recordingMetrics) RateLimitDecision(class string, allowed bool) {
	if allowed {
		m.allowed++
	} else {
		m.denied++
	}
}

func TestMiddlewareMetrics(t *testing.T) {
	cfg := ratelimit.Config{ratelimit.ClassBulk: {Limit: 1, Window: time.Minute}}
	limiter := ratelimit.New(ratelimit.NewMemoryStore(), cfg)
	metrics := &recordingMetrics{}
	var reached int
	handler := ratelimit.Middleware(limiter, ratelimit.ClassBulk,
		ratelimit.WithMetrics(metrics),
	)(okHandler(&reached))
	tc := &shared.TenantContext{PrincipalID: "user-1", OrgID: "org-1", Role: shared.RoleOrgAdmin}

	limitedRequest(t, handler, tc)
	limitedRequest(t, handler, tc)

	assert.Equal(t, 1, metrics.allowed)
	assert.Equal(t, 1, metrics.denied)
}

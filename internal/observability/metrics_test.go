package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridian-grc/veridian/internal/observability"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestRequestMetrics(t *testing.T) {
	m := observability.NewMetrics()

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/api/v1/systems", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Get("/api/v1/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/systems", nil))
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))

	body := scrape(t, m)
	assert.Contains(t, body, `veridian_http_requests_total{code="200",route="/api/v1/systems"} 3`)
	assert.Contains(t, body, `veridian_http_requests_total{code="404",route="/api/v1/missing"} 1`)
	assert.Contains(t, body, "veridian_http_request_duration_seconds")
}

func TestCacheMetrics(t *testing.T) {
	m := observability.NewMetrics()

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()

	body := scrape(t, m)
	assert.Contains(t, body, `veridian_cache_requests_total{outcome="hit"} 2`)
	assert.Contains(t, body, `veridian_cache_requests_total{outcome="miss"} 1`)
}

func TestRateLimitMetrics(t *testing.T) {
	m := observability.NewMetrics()

	m.RateLimitDecision("mutation", true)
	m.RateLimitDecision("mutation", true)
	m.RateLimitDecision("mutation", false)

	body := scrape(t, m)
	assert.Contains(t, body, `veridian_rate_limit_decisions_total{class="mutation",outcome="allowed"} 2`)
	assert.Contains(t, body, `veridian_rate_limit_decisions_total{class="mutation",outcome="denied"} 1`)
}

func TestNilMetricsAreInert(t *testing.T) {
	var m *observability.Metrics

	m.CacheHit()
	m.CacheMiss()
	m.RateLimitDecision("query", true)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	m.Middleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

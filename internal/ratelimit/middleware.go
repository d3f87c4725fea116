package ratelimit

import (
	"log/slog"
	"net/http"

	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/shared"
)

// MetricsRecorder receives limiter decisions for observability.
type MetricsRecorder interface {
	RateLimitDecision(class string, allowed bool)
}

// MiddlewareOption customizes the middleware gate.
type MiddlewareOption func(*middlewareOptions)

type middlewareOptions struct {
	skip    func(*http.Request) bool
	logger  *slog.Logger
	metrics MetricsRecorder
}

// WithSkip bypasses limiting entirely when the predicate returns true. A
// skipped request does not create or mutate any window.
func WithSkip(skip func(*http.Request) bool) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.skip = skip
	}
}

// WithLogger sets the logger for store failures.
func WithLogger(logger *slog.Logger) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.logger = logger
	}
}

// WithMetrics records limiter decisions.
func WithMetrics(metrics MetricsRecorder) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.metrics = metrics
	}
}

// Middleware gates handlers behind the principal's budget for one class.
// Denied requests short-circuit with 429 before the handler body runs. The
// limiter keys on the resolved principal; unauthenticated requests are
// rejected 401 here, since pre-authentication traffic is limited by client
// IP at the router edge instead.
func Middleware(limiter *Limiter, class Class, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	var o middlewareOptions
	for _, opt := range opts {
		opt(&o)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if o.skip != nil && o.skip(r) {
				next.ServeHTTP(w, r)
				return
			}
			tc := shared.TenantFromContext(r.Context())
			if !tc.Authenticated() {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			decision, err := limiter.Allow(r.Context(), tc.PrincipalID, class)
			if err != nil {
				// A limiter outage must not take reads down with it;
				// the request proceeds uncounted.
				if o.logger != nil {
					o.logger.Error("rate limit store failure", slog.String("class", string(class)), slog.Any("error", err))
				}
				next.ServeHTTP(w, r)
				return
			}
			if o.metrics != nil {
				o.metrics.RateLimitDecision(string(class), decision.Allowed)
			}
			if !decision.Allowed {
				httpx.RespondError(w, &shared.RateLimitedError{
					Class:   string(class),
					ResetIn: decision.ResetIn,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/veridian-grc/veridian/internal/audit"
	"github.com/veridian-grc/veridian/internal/dashboard"
	"github.com/veridian-grc/veridian/internal/observability"
	"github.com/veridian-grc/veridian/internal/shared"
	"github.com/veridian-grc/veridian/internal/systems"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SessionManager   *shared.SessionManager
	Metrics          *observability.Metrics
	SystemsHandler   *systems.Handler
	DashboardHandler *dashboard.Handler
	AuditHandler     *audit.Handler
}

// NewRouter constructs the chi.Router with Veridian defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if params.SystemsHandler != nil {
			params.SystemsHandler.Routes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.Routes(r)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.Routes(r)
		}
	})

	return r
}

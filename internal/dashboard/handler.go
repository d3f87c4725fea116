package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/ratelimit"
	"github.com/veridian-grc/veridian/internal/rbac"
	"github.com/veridian-grc/veridian/internal/shared"
)

// Handler serves the dashboard endpoint.
type Handler struct {
	service *Service
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	limitMw []ratelimit.MiddlewareOption
}

// NewHandler constructs a dashboard handler.
func NewHandler(service *Service, limiter *ratelimit.Limiter, logger *slog.Logger, limitOpts ...ratelimit.MiddlewareOption) *Handler {
	return &Handler{service: service, limiter: limiter, logger: logger, limitMw: limitOpts}
}

// Routes mounts the dashboard endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(rbac.RequireMember())
		r.Use(ratelimit.Middleware(h.limiter, ratelimit.ClassQuery, h.limitMw...))
		r.Get("/dashboard", h.HandleStats)
	})
}

// HandleStats returns the organization's compliance overview.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())
	stats, err := h.service.Stats(r.Context(), tc.OrgID)
	if err != nil {
		h.logger.Error("dashboard stats", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/ratelimit"
	"github.com/veridian-grc/veridian/internal/rbac"
	"github.com/veridian-grc/veridian/internal/shared"
)

// Handler serves the audit trail listing.
type Handler struct {
	service *Service
	limiter *ratelimit.Limiter
	logger  *slog.Logger
	limitMw []ratelimit.MiddlewareOption
}

// NewHandler constructs an audit handler.
func NewHandler(service *Service, limiter *ratelimit.Limiter, logger *slog.Logger, limitOpts ...ratelimit.MiddlewareOption) *Handler {
	return &Handler{service: service, limiter: limiter, logger: logger, limitMw: limitOpts}
}

// Routes mounts the audit endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(rbac.Require(shared.RoleOrgAdmin, shared.RoleComplianceManager, shared.RoleAuditor))
		r.Use(ratelimit.Middleware(h.limiter, ratelimit.ClassQuery, h.limitMw...))
		r.Get("/audit-events", h.HandleList)
	})
}

// HandleList returns one offset page of the organization's audit trail.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	filter := ListFilter{
		Action: r.URL.Query().Get("action"),
		Limit:  limit,
		Offset: offset,
	}

	result, err := h.service.List(r.Context(), tc.OrgID, filter)
	if err != nil {
		h.logger.Error("list audit events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

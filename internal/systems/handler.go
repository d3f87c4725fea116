package systems

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/veridian-grc/veridian/internal/platform/httpx"
	"github.com/veridian-grc/veridian/internal/ratelimit"
	"github.com/veridian-grc/veridian/internal/rbac"
	"github.com/veridian-grc/veridian/internal/shared"
)

// Handler serves the systems endpoints.
type Handler struct {
	service  *Service
	limiter  *ratelimit.Limiter
	logger   *slog.Logger
	validate *validator.Validate
	limitMw  []ratelimit.MiddlewareOption
}

// NewHandler constructs a systems handler.
func NewHandler(service *Service, limiter *ratelimit.Limiter, logger *slog.Logger, limitOpts ...ratelimit.MiddlewareOption) *Handler {
	return &Handler{
		service:  service,
		limiter:  limiter,
		logger:   logger,
		validate: validator.New(),
		limitMw:  limitOpts,
	}
}

type systemRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=200"`
	Category    string `json:"category" validate:"required,max=100"`
	Criticality string `json:"criticality" validate:"omitempty,oneof=low medium high critical"`
	Status      string `json:"status" validate:"omitempty,oneof=compliant at_risk non_compliant pending_review"`
	Owner       string `json:"owner" validate:"omitempty,max=200"`
}

// Routes mounts the systems endpoints: reads behind the query budget for any
// member, writes behind the mutation budget for mutating roles.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/systems", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rbac.RequireMember())
			r.Use(ratelimit.Middleware(h.limiter, ratelimit.ClassQuery, h.limitMw...))
			r.Get("/", h.HandleList)
			r.Get("/{systemID}", h.HandleGet)
		})
		r.Group(func(r chi.Router) {
			r.Use(rbac.RequireMutation())
			r.Use(ratelimit.Middleware(h.limiter, ratelimit.ClassMutation, h.limitMw...))
			r.Post("/", h.HandleCreate)
			r.Put("/{systemID}", h.HandleUpdate)
			r.Delete("/{systemID}", h.HandleDelete)
		})
	})
}

// HandleList returns one cursor page of the organization's systems.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	filter := ListFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Cursor:   r.URL.Query().Get("cursor"),
		Limit:    limit,
	}

	result, err := h.service.List(r.Context(), tc.OrgID, filter)
	if err != nil {
		h.logger.Error("list systems", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

// HandleGet returns one system.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())
	sys, err := h.service.Get(r.Context(), tc.OrgID, chi.URLParam(r, "systemID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sys)
}

// HandleCreate registers a new system.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())

	var req systemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	sys, err := h.service.Create(r.Context(), tc, inputFromRequest(req))
	if err != nil {
		h.logger.Error("create system", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sys)
}

// HandleUpdate rewrites a system's mutable fields.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())

	var req systemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	sys, err := h.service.Update(r.Context(), tc, chi.URLParam(r, "systemID"), inputFromRequest(req))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sys)
}

// HandleDelete archives a system.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	tc := shared.TenantFromContext(r.Context())
	if err := h.service.Delete(r.Context(), tc, chi.URLParam(r, "systemID")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func inputFromRequest(req systemRequest) Input {
	return Input{
		Name:        req.Name,
		Category:    req.Category,
		Criticality: req.Criticality,
		Status:      Status(req.Status),
		Owner:       req.Owner,
	}
}

// Package api provides HTTP handlers for the project administration API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/artpar/shipyard/internal/core/crypto"
	"github.com/artpar/shipyard/internal/core/domain"
	"github.com/artpar/shipyard/internal/shell/api/openapi"
	"github.com/artpar/shipyard/internal/shell/keys"
	"github.com/artpar/shipyard/internal/shell/projects"
	"github.com/artpar/shipyard/internal/shell/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Handler
// =============================================================================

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides HTTP handlers for the API.
type Handler struct {
	projects *projects.Service
	keys     *keys.Service
	db       Pinger
	validate *validator.Validate
	spec     *openapi.Generator
	logger   *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(p *projects.Service, k *keys.Service, db Pinger, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		projects: p,
		keys:     k,
		db:       db,
		validate: newValidator(),
		spec:     newSpecGenerator(),
		logger:   l,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)
	r.Get("/openapi.json", h.spec.Handler())

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.handleListProjects)
		r.Post("/", h.handleCreateProject)
		r.Get("/{id}", h.handleGetProject)
		r.Put("/{id}", h.handleUpdateProject)
		r.Patch("/{id}", h.handleUpdateProject)
		r.Delete("/{id}", h.handleDeleteProject)
		r.Post("/{id}/clone", h.handleCloneProject)
		r.Get("/{id}/variables", h.handleListVariables)
	})

	r.Get("/templates/{id}", h.handleGetTemplate)
	r.Post("/keys", h.handleCreateKey)
	r.Post("/groups", h.handleCreateGroup)

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "check", "database", "error", err)
		checks["database"] = "failed"
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{
			Status: "not_ready",
			Checks: checks,
		})
		return
	}
	checks["database"] = "ok"

	h.writeJSON(w, http.StatusOK, ReadyResponse{
		Status: "ready",
		Checks: checks,
	})
}

// =============================================================================
// Project Handlers
// =============================================================================

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	perPage := queryInt(r, "per_page")

	result, err := h.projects.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list projects", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projects.Create(r.Context(), req.Fields())
	if err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			h.writeError(w, http.StatusBadRequest, "group or key not found", "validation_error")
			return
		}
		h.logger.Error("failed to create project", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create project", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusCreated, project)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	project, err := h.projects.Get(r.Context(), id)
	if err != nil {
		h.writeProjectError(w, err, "get")
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

func (h *Handler) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	project, err := h.projects.Update(r.Context(), id, req.Fields())
	if err != nil {
		if errors.Is(err, store.ErrForeignKey) {
			h.writeError(w, http.StatusBadRequest, "group or key not found", "validation_error")
			return
		}
		h.writeProjectError(w, err, "update")
		return
	}

	h.writeJSON(w, http.StatusOK, project)
}

func (h *Handler) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	if err := h.projects.Destroy(r.Context(), id); err != nil {
		h.writeProjectError(w, err, "delete")
		return
	}

	h.writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func (h *Handler) handleCloneProject(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	var req CloneProjectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	kind, err := domain.ParseCloneKind(req.Type)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), "validation_error")
		return
	}

	target, err := h.projects.Clone(r.Context(), id, domain.CloneFields{Name: req.Name, Kind: kind})
	if err != nil {
		h.writeProjectError(w, err, "clone")
		return
	}

	redirect := target.Redirect()
	w.Header().Set("Location", redirect.Path)
	h.writeJSON(w, http.StatusCreated, redirect)
}

func (h *Handler) handleListVariables(w http.ResponseWriter, r *http.Request) {
	id, ok := h.projectID(w, r)
	if !ok {
		return
	}

	vars, err := h.projects.Variables(r.Context(), id)
	if err != nil {
		h.writeProjectError(w, err, "list variables for")
		return
	}

	h.writeJSON(w, http.StatusOK, vars)
}

// =============================================================================
// Template, Key and Group Handlers
// =============================================================================

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "template not found", "template_not_found")
		return
	}

	template, err := h.projects.Template(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			h.writeError(w, http.StatusNotFound, "template not found", "template_not_found")
			return
		}
		h.logger.Error("failed to get template", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get template", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, template)
}

func (h *Handler) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req CreateKeyRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	key, err := h.keys.Create(r.Context(), req.Name, req.PrivateKey)
	if err != nil {
		if errors.Is(err, crypto.ErrInvalidSSHKey) {
			h.writeError(w, http.StatusBadRequest, "private_key is not a valid SSH private key", "validation_error")
			return
		}
		h.logger.Error("failed to create key", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create key", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusCreated, key)
}

func (h *Handler) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	group, err := h.projects.CreateGroup(r.Context(), req.Name, req.Order)
	if err != nil {
		h.logger.Error("failed to create group", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create group", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusCreated, group)
}

// =============================================================================
// Helpers
// =============================================================================

// decodeAndValidate reads the JSON body into req and validates it. On failure
// it writes a 400 response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return false
	}

	if err := h.validate.Struct(req); err != nil {
		fields, ok := formatValidationErrors(err)
		if !ok {
			h.logger.Error("failed to validate request", "error", err)
			h.writeError(w, http.StatusInternalServerError, "failed to validate request", "internal_error")
			return false
		}
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  summarize(fields),
			Code:   "validation_error",
			Fields: fields,
		})
		return false
	}
	return true
}

// projectID parses the {id} route parameter. A non-numeric id cannot name a
// project, so it is reported as not found.
func (h *Handler) projectID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, http.StatusNotFound, "project not found", "project_not_found")
		return 0, false
	}
	return id, true
}

func (h *Handler) writeProjectError(w http.ResponseWriter, err error, action string) {
	if isNotFound(err) {
		h.writeError(w, http.StatusNotFound, "project not found", "project_not_found")
		return
	}
	h.logger.Error("failed to "+action+" project", "error", err)
	h.writeError(w, http.StatusInternalServerError, "failed to "+action+" project", "internal_error")
}

func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

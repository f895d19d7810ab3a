package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"rentcar-backoffice/internal/branch/domain"
	"rentcar-backoffice/internal/branch/service"
	"rentcar-backoffice/internal/server/httpjson"
	"rentcar-backoffice/internal/server/middleware"
)

// Handler exposes branch CRUD endpoints.
type Handler struct {
	svc    *service.BranchService
	logger *slog.Logger
}

func NewHandler(svc *service.BranchService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type branchPayload struct {
	Name     string         `json:"name"`
	Address  domain.Address `json:"address"`
	IsActive *bool          `json:"isActive,omitempty"`
}

type branchResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Address       domain.Address `json:"address"`
	IsActive      bool           `json:"isActive"`
	CreatedAt     time.Time      `json:"createdAt"`
	CreatedBy     string         `json:"createdBy"`
	CreatedByName string         `json:"createdByName,omitempty"`
	UpdatedAt     *time.Time     `json:"updatedAt,omitempty"`
	UpdatedBy     *string        `json:"updatedBy,omitempty"`
	UpdatedByName string         `json:"updatedByName,omitempty"`
}

func toResponse(b *domain.Branch) branchResponse {
	return branchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		CreatedBy: b.CreatedBy,
		UpdatedAt: b.UpdatedAt,
		UpdatedBy: b.UpdatedBy,
	}
}

// List handles GET /branches.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.List(r.Context())
	if err != nil {
		h.logger.Error("list branches failed", "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]branchResponse, 0, len(details))
	for _, d := range details {
		resp := toResponse(&d.Branch)
		resp.CreatedByName = d.CreatedByName
		resp.UpdatedByName = d.UpdatedByName
		out = append(out, resp)
	}
	httpjson.Respond(w, http.StatusOK, out)
}

// Get handles GET /branches/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, toResponse(b))
}

// Create handles POST /branches.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req branchPayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	b, err := h.svc.Create(r.Context(), service.CreateInput{Name: req.Name, Address: req.Address},
		id.UserID, middleware.ClientIP(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusCreated, toResponse(b))
}

// Update handles PUT /branches/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	var req branchPayload
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	b, err := h.svc.Update(r.Context(), r.PathValue("id"),
		service.UpdateInput{Name: req.Name, Address: req.Address, IsActive: active},
		id.UserID, middleware.ClientIP(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusOK, toResponse(b))
}

// Delete handles DELETE /branches/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("id"), id.UserID, middleware.ClientIP(r)); err != nil {
		h.writeError(w, err)
		return
	}
	httpjson.Respond(w, http.StatusNoContent, nil)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrBranchNotFound):
		httpjson.Error(w, http.StatusNotFound, service.ErrBranchNotFound.Error())
	case errors.Is(err, service.ErrBranchNameTaken):
		httpjson.Error(w, http.StatusConflict, service.ErrBranchNameTaken.Error())
	case isValidationError(err):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("branch request failed", "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// isValidationError reports whether err came from domain validation rather
// than infrastructure. Validation errors are plain errors without a wrapped
// cause.
func isValidationError(err error) bool {
	return errors.Unwrap(err) == nil
}

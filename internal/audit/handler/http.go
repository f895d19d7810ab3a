package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rentcar-backoffice/internal/audit/repository"
	"rentcar-backoffice/internal/server/httpjson"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler exposes the audit log listing endpoint.
type Handler struct {
	repo   repository.Repository
	logger *slog.Logger
}

func NewHandler(repo repository.Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

type entryResponse struct {
	ID        string            `json:"id"`
	ActorID   string            `json:"actorId"`
	Action    string            `json:"action"`
	Resource  string            `json:"resource"`
	IP        string            `json:"ip,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// List handles GET /audit-logs?limit=&offset=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	offset := queryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	logs, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("list audit logs failed", "error", err)
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	out := make([]entryResponse, 0, len(logs))
	for _, l := range logs {
		out = append(out, entryResponse{
			ID:        l.ID,
			ActorID:   l.ActorID,
			Action:    l.Action,
			Resource:  l.Resource,
			IP:        l.IP,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt,
		})
	}
	httpjson.Respond(w, http.StatusOK, out)
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

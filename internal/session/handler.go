package session

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Handler handles HTTP requests for session bootstrap
type Handler struct {
	manager *Manager
	logger  *logging.Logger
}

// NewHandler creates a new session handler
func NewHandler(manager *Manager, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{manager: manager, logger: logger}
}

// Routes mounts the session endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Post("/refresh", h.Refresh)
	r.Delete("/", h.End)
	return r
}

type response struct {
	Snapshot
	Warning string `json:"warning,omitempty"`
}

// Get handles GET /session requests. A bootstrap that hits the deadline
// still answers with the partial snapshot; the client may retry.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	s, err := h.manager.GetOrLoad(r.Context(), userID)
	switch {
	case err == nil:
		writeSnapshot(w, s, "")
	case errors.Is(err, ErrLoadTimeout):
		writeSnapshot(w, s, "still loading, retry shortly")
	default:
		h.logger.Error("session bootstrap failed", "error", err, "user_id", userID)
		http.Error(w, `{"error":"failed to load session, retry"}`, http.StatusBadGateway)
	}
}

// Refresh handles POST /session/refresh requests. A failed refresh keeps the
// last-known-good snapshot and surfaces a transient warning.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	s, err := h.manager.Refresh(r.Context(), userID)
	switch {
	case err == nil:
		writeSnapshot(w, s, "")
	case errors.Is(err, ErrRefreshFailed):
		writeSnapshot(w, s, err.Error())
	case errors.Is(err, ErrLoadTimeout):
		writeSnapshot(w, s, "still loading, retry shortly")
	default:
		h.logger.Error("session refresh failed", "error", err, "user_id", userID)
		http.Error(w, `{"error":"failed to load session, retry"}`, http.StatusBadGateway)
	}
}

// End handles DELETE /session requests
func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	h.manager.End(userID)
	w.WriteHeader(http.StatusNoContent)
}

func writeSnapshot(w http.ResponseWriter, s *Session, warning string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response{Snapshot: s.Snapshot(), Warning: warning})
}

package accounts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Handler handles HTTP requests for the practitioner profile
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new accounts handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the profile endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Update)
	return r
}

// Get handles GET /profile requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	profile, err := h.service.Get(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(profile)
}

// Update handles PUT /profile requests
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	var input UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.service.Update(r.Context(), userID, input)
	if err != nil {
		h.writeError(w, r, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stored)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, userID string) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, ErrInvalidPlan):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	default:
		h.logger.Error("profile operation failed", "error", err, "user_id", userID, "path", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
	}
}

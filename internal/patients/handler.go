package patients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Handler handles HTTP requests for patients
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new patients handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the patient endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/deactivate", h.Deactivate)
	r.Post("/{id}/activate", h.Activate)
	return r
}

// List handles GET /patients requests. ?active=false returns the
// deactivated partition; the default is the active one.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	list := h.service.ListActive
	if r.URL.Query().Get("active") == "false" {
		list = h.service.ListInactive
	}

	rows, err := list(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list patients", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// Create handles POST /patients requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.service.Create(r.Context(), userID, input)
	if err != nil {
		h.writeServiceError(w, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(stored)
}

// Update handles PUT /patients/{id} requests
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.service.Update(r.Context(), userID, id, input)
	if err != nil {
		h.writeServiceError(w, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stored)
}

// Deactivate handles POST /patients/{id}/deactivate requests
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.partitionMove(w, r, h.service.Deactivate)
}

// Activate handles POST /patients/{id}/activate requests
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.partitionMove(w, r, h.service.Activate)
}

func (h *Handler) partitionMove(w http.ResponseWriter, r *http.Request, move func(ctx context.Context, userID string, id int64) error) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	if err := move(r.Context(), userID, id); err != nil {
		h.writeServiceError(w, err, userID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, userID string) {
	switch {
	case errors.Is(err, ErrNameRequired) || errors.Is(err, ErrNoRecurrenceDays) ||
		errors.Is(err, ErrInvalidWeekday) || errors.Is(err, ErrInvalidTime):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrQuotaReached):
		writeJSONError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("patient operation failed", "error", err, "user_id", userID)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Handler handles HTTP requests for appointments
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the appointment endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Put("/{id}", h.UpdateDetails)
	r.Delete("/{id}", h.Delete)
	return r
}

// List handles GET /appointments requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	rows, err := h.service.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}

// Create handles POST /appointments requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	var input AddInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.service.Add(r.Context(), userID, input)
	if err != nil {
		h.writeServiceError(w, r, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(stored)
}

// UpdateStatus handles PATCH /appointments/{id}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	id, err := parseID(r)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.service.UpdateStatus(r.Context(), userID, id, body.Status)
	if err != nil {
		h.writeServiceError(w, r, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stored)
}

// UpdateDetails handles PUT /appointments/{id} requests
func (h *Handler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	id, err := parseID(r)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	var input UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	stored, err := h.service.UpdateDetails(r.Context(), userID, id, input)
	if err != nil {
		h.writeServiceError(w, r, err, userID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(stored)
}

// Delete handles DELETE /appointments/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	id, err := parseID(r)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		h.writeServiceError(w, r, err, userID)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, userID string) {
	switch {
	case errors.Is(err, ErrDuplicatePatientDay) || errors.Is(err, ErrDuplicateTimeSlot):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidDate) || errors.Is(err, ErrInvalidTime) || errors.Is(err, ErrInvalidStatus):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("appointment operation failed", "error", err, "user_id", userID, "path", r.URL.Path)
		writeJSONError(w, "internal server error", http.StatusInternalServerError)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

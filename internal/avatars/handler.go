package avatars

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// PatientUpdater persists the avatar URL back onto the patient row.
type PatientUpdater interface {
	SetAvatarURL(ctx context.Context, userID string, id int64, url string) error
}

// Handler handles HTTP requests for patient avatars
type Handler struct {
	store    *Store
	patients PatientUpdater
	logger   *logging.Logger
}

// NewHandler creates a new avatars handler
func NewHandler(store *Store, patients PatientUpdater, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, patients: patients, logger: logger}
}

// Routes mounts the avatar endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Put("/{id}/avatar", h.Upload)
	r.Delete("/{id}/avatar", h.Delete)
	return r
}

// Upload handles PUT /avatars/{id}/avatar requests. The request body is the
// raw image; Content-Type selects the format.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	patientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, MaxSize+1))
	if err != nil {
		http.Error(w, `{"error":"failed to read body"}`, http.StatusBadRequest)
		return
	}

	url, err := h.store.Upload(r.Context(), userID, patientID, r.Header.Get("Content-Type"), data)
	if err != nil {
		h.writeError(w, err, userID)
		return
	}

	if err := h.patients.SetAvatarURL(r.Context(), userID, patientID, url); err != nil {
		h.logger.Error("failed to persist avatar url", "error", err, "user_id", userID, "patient_id", patientID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"avatar_url": url})
}

// Delete handles DELETE /avatars/{id}/avatar requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	patientID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return
	}

	if err := h.store.Delete(r.Context(), userID, patientID); err != nil {
		h.logger.Error("failed to delete avatar", "error", err, "user_id", userID, "patient_id", patientID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	if err := h.patients.SetAvatarURL(r.Context(), userID, patientID, ""); err != nil {
		h.logger.Error("failed to clear avatar url", "error", err, "user_id", userID, "patient_id", patientID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, err error, userID string) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case errors.Is(err, ErrDisabled):
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	case errors.Is(err, ErrUnsupportedFormat):
		w.WriteHeader(http.StatusUnsupportedMediaType)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	case errors.Is(err, ErrTooLarge):
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
	default:
		h.logger.Error("avatar upload failed", "error", err, "user_id", userID)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
	}
}

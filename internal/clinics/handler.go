package clinics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Store is the persistence surface the handler needs.
type Store interface {
	List(ctx context.Context, userID string) ([]Clinic, error)
	Get(ctx context.Context, userID string, id int64) (*Clinic, error)
	Insert(ctx context.Context, c Clinic) (*Clinic, error)
	Update(ctx context.Context, c Clinic) (*Clinic, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// Handler handles HTTP requests for clinics
type Handler struct {
	store  Store
	logger *logging.Logger
}

// NewHandler creates a new clinics handler
func NewHandler(store Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes mounts the clinic endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

type clinicInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (in *clinicInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return ErrNameRequired
	}
	return nil
}

// List handles GET /clinics requests
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	out, err := h.store.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /clinics/{id} requests
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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
	c, err := h.store.Get(r.Context(), userID, id)
	if err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create handles POST /clinics requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}
	var in clinicInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := in.validate(); err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	stored, err := h.store.Insert(r.Context(), Clinic{UserID: userID, Name: in.Name, Address: in.Address})
	if err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// Update handles PUT /clinics/{id} requests
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
	var in clinicInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if err := in.validate(); err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	stored, err := h.store.Update(r.Context(), Clinic{ID: id, UserID: userID, Name: in.Name, Address: in.Address})
	if err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// Delete handles DELETE /clinics/{id} requests
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.store.Delete(r.Context(), userID, id); err != nil {
		h.writeError(w, r, err, userID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, userID string) {
	switch {
	case errors.Is(err, ErrNameRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrDuplicateName):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		h.logger.Error("clinic operation failed", "error", err, "user_id", userID, "path", r.URL.Path)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package schedule

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Handler handles HTTP requests for the weekly agenda
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new schedule handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the schedule endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/agenda", h.Agenda)
	r.Post("/materialize", h.Materialize)
	return r
}

// Agenda handles GET /schedule/agenda?week=YYYY-MM-DD requests. The week
// parameter may be any date inside the wanted week; it defaults to today.
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	anchor := h.service.now()
	if raw := r.URL.Query().Get("week"); raw != "" {
		parsed, err := time.ParseInLocation(appointments.DateLayout, raw, time.Local)
		if err != nil {
			http.Error(w, `{"error":"invalid week date"}`, http.StatusBadRequest)
			return
		}
		anchor = parsed
	}

	view, err := h.service.Week(r.Context(), userID, anchor)
	if err != nil {
		h.logger.Error("failed to build agenda", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

// Materialize handles POST /schedule/materialize requests. The body may
// carry {"date":"YYYY-MM-DD"}; an empty body reconciles today.
func (h *Handler) Materialize(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	date := h.service.now()
	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Date != "" {
		parsed, err := time.ParseInLocation(appointments.DateLayout, body.Date, time.Local)
		if err != nil {
			http.Error(w, `{"error":"invalid date"}`, http.StatusBadRequest)
			return
		}
		date = parsed
	}

	created := h.service.Materialize(r.Context(), userID, date)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]int{"created": created})
}

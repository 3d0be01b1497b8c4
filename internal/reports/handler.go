package reports

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/identity"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Handler handles HTTP requests for revenue reports
type Handler struct {
	repo   *RevenueRepository
	logger *logging.Logger
}

// NewHandler creates a new reports handler
func NewHandler(repo *RevenueRepository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Routes mounts the report endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/revenue", h.Revenue)
	r.Get("/revenue/monthly", h.Monthly)
	return r
}

// Revenue handles GET /reports/revenue?start=YYYY-MM-DD&end=YYYY-MM-DD.
// start and end must be given together or not at all.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	var start, end *time.Time
	rawStart := r.URL.Query().Get("start")
	rawEnd := r.URL.Query().Get("end")
	if (rawStart == "") != (rawEnd == "") {
		http.Error(w, `{"error":"start and end must be provided together"}`, http.StatusBadRequest)
		return
	}
	if rawStart != "" {
		s, err := time.Parse(appointments.DateLayout, rawStart)
		if err != nil {
			http.Error(w, `{"error":"invalid start date"}`, http.StatusBadRequest)
			return
		}
		e, err := time.Parse(appointments.DateLayout, rawEnd)
		if err != nil {
			http.Error(w, `{"error":"invalid end date"}`, http.StatusBadRequest)
			return
		}
		if e.Before(s) {
			http.Error(w, `{"error":"end must not precede start"}`, http.StatusBadRequest)
			return
		}
		start, end = &s, &e
	}

	summary, err := h.repo.GetSummary(r.Context(), userID, start, end)
	if err != nil {
		h.logger.Error("failed to build revenue summary", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

// Monthly handles GET /reports/revenue/monthly?months=N requests
func (h *Handler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"missing user context"}`, http.StatusUnauthorized)
		return
	}

	months := 12
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 120 {
			http.Error(w, `{"error":"invalid months"}`, http.StatusBadRequest)
			return
		}
		months = parsed
	}

	out, err := h.repo.GetMonthly(r.Context(), userID, months)
	if err != nil {
		h.logger.Error("failed to build monthly revenue", "error", err, "user_id", userID)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

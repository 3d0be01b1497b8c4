package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmborges/clinicagenda/internal/accounts"
	"github.com/dmborges/clinicagenda/internal/appointments"
	"github.com/dmborges/clinicagenda/internal/avatars"
	"github.com/dmborges/clinicagenda/internal/clinics"
	httpmiddleware "github.com/dmborges/clinicagenda/internal/http/middleware"
	"github.com/dmborges/clinicagenda/internal/observability/metrics"
	"github.com/dmborges/clinicagenda/internal/patients"
	"github.com/dmborges/clinicagenda/internal/realtime"
	"github.com/dmborges/clinicagenda/internal/reports"
	"github.com/dmborges/clinicagenda/internal/schedule"
	"github.com/dmborges/clinicagenda/internal/session"
	"github.com/dmborges/clinicagenda/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	ClinicsHandler      *clinics.Handler
	PatientsHandler     *patients.Handler
	AppointmentsHandler *appointments.Handler
	ScheduleHandler     *schedule.Handler
	ReportsHandler      *reports.Handler
	ProfileHandler      *accounts.Handler
	SessionHandler      *session.Handler
	AvatarsHandler      *avatars.Handler
	SnapshotHandler     *metrics.SnapshotHandler
	RealtimeHub         *realtime.Hub

	MetricsHandler     http.Handler
	JWTSecret          string
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Authenticated API
	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(cfg.JWTSecret))

		if cfg.RealtimeHub != nil {
			private.Handle("/realtime", cfg.RealtimeHub)
		}

		private.Route("/api/v1", func(api chi.Router) {
			if cfg.SessionHandler != nil {
				api.Mount("/session", cfg.SessionHandler.Routes())
			}
			if cfg.ClinicsHandler != nil {
				api.Mount("/clinics", cfg.ClinicsHandler.Routes())
			}
			if cfg.PatientsHandler != nil {
				api.Mount("/patients", cfg.PatientsHandler.Routes())
			}
			if cfg.AvatarsHandler != nil {
				api.Mount("/avatars", cfg.AvatarsHandler.Routes())
			}
			if cfg.AppointmentsHandler != nil {
				api.Mount("/appointments", cfg.AppointmentsHandler.Routes())
			}
			if cfg.ScheduleHandler != nil {
				api.Mount("/schedule", cfg.ScheduleHandler.Routes())
			}
			if cfg.ReportsHandler != nil {
				api.Mount("/reports", cfg.ReportsHandler.Routes())
			}
			if cfg.ProfileHandler != nil {
				api.Mount("/profile", cfg.ProfileHandler.Routes())
			}
			if cfg.SnapshotHandler != nil {
				api.Get("/ops/schedule", cfg.SnapshotHandler.GetSnapshot)
			}
		})
	})

	return r
}

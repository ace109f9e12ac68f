package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ftgifting/backoffice/internal/auth"
	"github.com/ftgifting/backoffice/internal/clients"
	"github.com/ftgifting/backoffice/internal/documents"
	"github.com/ftgifting/backoffice/internal/mail"
	"github.com/ftgifting/backoffice/internal/observability"
	"github.com/ftgifting/backoffice/jobs"
	"github.com/ftgifting/backoffice/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthService      *auth.Service
	AuthHandler      *auth.Handler
	DocumentsHandler *documents.Handler
	ClientsHandler   *clients.Handler
	MailHandler      *mail.Handler
	ReportHandler    *report.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything below requires a valid bearer token.
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(params.AuthService))

		r.Get("/overview", params.DocumentsHandler.Overview)
		r.Route("/documents/{kind}", func(r chi.Router) {
			params.DocumentsHandler.KindRoutes(r)
			if params.MailHandler != nil {
				params.MailHandler.MountRoutes(r)
			}
		})
		r.Route("/clients", params.ClientsHandler.MountRoutes)
		if params.ReportHandler != nil {
			r.Route("/report", params.ReportHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

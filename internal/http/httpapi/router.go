package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"mergeq/internal/http/handlers"
	"mergeq/internal/middleware"
)

// NewRouter wires the thin HTTP surface around the core: submit, status,
// info, file serving, health.
func NewRouter(app *handlers.App, apiPrefix string, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(logger),
	)

	prefix := "/" + strings.Trim(apiPrefix, "/")
	r.Route(prefix, func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Post("/info", app.Info)
		r.Post("/download", app.Download)
		r.Get("/job/{id}", app.JobStatus)
		r.Get("/downloads/{filename}", app.ServeDownload)
	})

	return r
}

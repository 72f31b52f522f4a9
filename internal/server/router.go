// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/filegate/service/internal/files"
	"github.com/filegate/service/internal/metrics"
	appMiddleware "github.com/filegate/service/internal/middleware"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Files   *files.Handler
	Errors  *appMiddleware.Errors
	Metrics *metrics.Metrics
	Log     zerolog.Logger
}

// NewRouter builds the router. /view is registered ahead of the request
// logger and is never logged.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/view", d.Files.View)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.Logger(d.Log))

		r.Get("/list-bucket", d.Errors.Handle(d.Files.ListBuckets))
		r.Get("/get-all", d.Errors.Handle(d.Files.ListFiles))
		r.Get("/get-file/{filename}", d.Errors.Handle(d.Files.GetFile))
		r.Delete("/delete/{filename}", d.Errors.Handle(d.Files.DeleteFile))
		r.Post("/upload", d.Errors.Handle(d.Files.Upload))
		r.Get("/hello", d.Files.Hello)
	})

	return r
}

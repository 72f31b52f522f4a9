// Package middleware provides reusable HTTP middleware for the API server.
package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// wrappedWriter captures the status code written by downstream handlers.
type wrappedWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *wrappedWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// FullURL rebuilds the URL the client requested: scheme, host and the
// original request URI.
func FullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// Logger returns middleware that logs method and full URL before the request
// is handled, then status code and duration once it completes. It never
// short-circuits the chain.
func Logger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			url := FullURL(r)
			reqID := chiMiddleware.GetReqID(r.Context())

			log.Info().
				Str("method", r.Method).
				Str("url", url).
				Str("request_id", reqID).
				Msg(r.Method + " : " + url)

			ww := &wrappedWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r)

			log.Info().
				Str("method", r.Method).
				Str("url", url).
				Int("status", ww.statusCode).
				Dur("duration", time.Since(start)).
				Str("request_id", reqID).
				Msg("request completed")
		})
	}
}

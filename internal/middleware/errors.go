package middleware

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/filegate/service/internal/apperror"
	"github.com/filegate/service/internal/response"
)

// HandlerFunc is an HTTP handler that returns its failure instead of
// writing it. Wrap it with Errors.Handle to get an http.HandlerFunc.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Errors is the single place failures become responses.
//
// In legacy mode every error is a 500 `{message}`, except errors carrying a
// raw provider body, which are written verbatim with 400. In typed mode each
// kind gets its own status and the body is always `{message}`.
type Errors struct {
	log   zerolog.Logger
	typed bool
}

// NewErrors creates the error middleware. typed selects per-kind statuses.
func NewErrors(log zerolog.Logger, typed bool) *Errors {
	return &Errors{log: log, typed: typed}
}

// Status returns the status code used for kind.
func (e *Errors) Status(kind apperror.Kind) int {
	if !e.typed {
		return http.StatusInternalServerError
	}
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidInput:
		return http.StatusBadRequest
	case apperror.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Handle adapts fn, reporting any returned error.
func (e *Errors) Handle(fn HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			e.Write(w, r, err)
		}
	}
}

// Write reports err to the client.
func (e *Errors) Write(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)

	if !e.typed {
		if raw, ok := apperror.RawOf(err); ok {
			e.log.Error().Err(err).Str("path", r.URL.Path).Msg("provider error")
			response.JSON(w, http.StatusBadRequest, raw)
			return
		}
	}

	status := e.Status(kind)
	ev := e.log.Warn()
	if status >= http.StatusInternalServerError {
		ev = e.log.Error()
	}
	ev.Err(err).Str("kind", string(kind)).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	response.Error(w, status, apperror.Message(err))
}

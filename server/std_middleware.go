package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	headerCSRFToken     = "X-CSRFToken"
	headerCorrelationID = "X-Correlation-ID"
)

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) APIMiddleware(mw ...func(http.HandlerFunc) http.HandlerFunc) []func(http.HandlerFunc) http.HandlerFunc {
	chainedMiddleWare := []func(http.HandlerFunc) http.HandlerFunc{
		s.CorrelationMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
	}
	chainedMiddleWare = append(chainedMiddleWare, mw...)
	return chainedMiddleWare
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// CorrelationMiddleware echoes the caller's correlation id, minting one when absent.
func (s *Server) CorrelationMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(headerCorrelationID)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(headerCorrelationID, id)
		}
		w.Header().Set(headerCorrelationID, id)
		next(w, r)
	}
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		s.metrics.ObserveRequest(r.Method, rec.status, time.Since(start).Seconds())

		if s.env != "DEV" {
			return
		}
		if rec.status >= http.StatusBadRequest {
			logError(r.Method, r.URL.Path, fmt.Sprintf("%d", rec.status))
			return
		}
		logRoute(r.Method, r.URL.Path)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("path", r.URL.Path).
					Str("correlation_id", r.Header.Get(headerCorrelationID)).
					Bytes("stack", debug.Stack()).
					Msgf("Recovered from panic: %v", rec)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "Internal server error"})
			}
		}()
		next(w, r)
	}
}

// CSRFMiddleware rejects an unsafe request whose X-CSRFToken header does not
// match the CSRF cookie. Requests without the cookie pass, which lets API
// clients that never loaded a page still call the endpoints.
func (s *Server) CSRFMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next(w, r)
			return
		}
		cookie, err := r.Cookie(s.csrfCookieName)
		if err != nil || cookie.Value == "" {
			next(w, r)
			return
		}
		header := r.Header.Get(headerCSRFToken)
		if subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
			writeJSON(w, http.StatusForbidden, map[string]string{"detail": "CSRF Failed: CSRF token missing or incorrect."})
			return
		}
		next(w, r)
	}
}

package server

import (
	"net/http"
	"time"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// route registers h under pattern with metrics, request logging and JSON
// error responses.
func (s *Server) route(mux *http.ServeMux, pattern string, h handlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.metrics.RequestsInFlight.Inc()
		defer s.metrics.RequestsInFlight.Dec()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		err := h(rec, r)
		if err != nil {
			status := statusFor(err)
			msg := err.Error()
			if status == http.StatusInternalServerError {
				msg = http.StatusText(status)
			}
			writeError(rec, status, msg)
		}

		duration := time.Since(start)
		s.metrics.RecordRequest(pattern, rec.status, duration)

		event := s.log.Debug()
		if err != nil {
			event = s.log.Error().Err(err)
		}
		event.
			Str("method", r.Method).
			Str("route", pattern).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration_ms", duration).
			Msg("request completed")
	})
}

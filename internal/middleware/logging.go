package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/logging"
)

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	if rec, ok := w.(*statusRecorder); ok {
		return rec
	}
	return &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Logging writes one log line per completed request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		start := time.Now()
		next.ServeHTTP(rec, r)

		userID := ""
		if claims := auth.GetSession(r.Context()); claims != nil {
			userID = claims.UserID
		}

		log := logging.WithRequest(auth.GetRequestID(r.Context()), userID, routePattern(r))
		fields := []interface{}{
			"method", r.Method,
			"status_code", rec.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if rec.statusCode >= http.StatusInternalServerError {
			log.Warnw("HTTP request failed", fields...)
			return
		}
		log.Infow("HTTP request completed", fields...)
	})
}

// routePattern returns the matched chi pattern once routing has run.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unknown"
}

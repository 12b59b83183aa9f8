package middleware

import (
	"net/http"
	"strconv"
	"time"

	"wohee/vodtracker/internal/metrics"
)

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware(metricsReg *metrics.MetricsRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metricsReg == nil {
				next.ServeHTTP(w, r)
				return
			}

			metricsReg.HTTPRequestsInFlight.WithLabelValues(r.Method).Inc()
			defer metricsReg.HTTPRequestsInFlight.WithLabelValues(r.Method).Dec()

			start := time.Now()
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			// the pattern is only known after the router has matched
			endpoint := routePattern(r)
			metricsReg.HTTPRequestsTotal.WithLabelValues(
				endpoint,
				r.Method,
				strconv.Itoa(rec.statusCode),
			).Inc()
			metricsReg.HTTPRequestDuration.WithLabelValues(
				endpoint,
				r.Method,
			).Observe(time.Since(start).Seconds())
		})
	}
}

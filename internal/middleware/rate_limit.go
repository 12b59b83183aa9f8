package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/metrics"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter allows max requests per window for each client IP, refilled
// evenly across the window.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*clientLimiter
	every    rate.Limit
	burst    int
	window   time.Duration
	metrics  *metrics.MetricsRegistry
	now      func() time.Time
}

func NewRateLimiter(max int, window time.Duration, metricsReg *metrics.MetricsRegistry) *RateLimiter {
	if max < 1 {
		max = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*clientLimiter),
		every:    rate.Every(window / time.Duration(max)),
		burst:    max,
		window:   window,
		metrics:  metricsReg,
		now:      time.Now,
	}
}

func (l *RateLimiter) getLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if cl, exists := l.limiters[ip]; exists {
		cl.lastSeen = now
		return cl.limiter
	}

	// a client idle for a whole window has a full bucket again, forget it
	for key, cl := range l.limiters {
		if now.Sub(cl.lastSeen) > l.window {
			delete(l.limiters, key)
		}
	}

	limiter := rate.NewLimiter(l.every, l.burst)
	l.limiters[ip] = &clientLimiter{limiter: limiter, lastSeen: now}
	return limiter
}

// Len returns the number of tracked clients.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !l.getLimiter(ip).AllowN(l.now(), 1) {
			l.metrics.RateLimited()
			common.RespondJSON(w, http.StatusTooManyRequests, common.ErrorBody{Error: constants.MsgTooManyRequests})
			return
		}

		next.ServeHTTP(w, r)
	})
}

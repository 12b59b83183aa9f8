package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"wohee/vodtracker/internal/access"
	"wohee/vodtracker/internal/auth"
	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/constants"
	"wohee/vodtracker/internal/metrics"
)

var testTables = access.NewTables(
	map[string]constants.WeaponPair{"role-sns": {Primary: "SNS", Secondary: "GS"}},
	[]string{"role-master"},
	[]string{"role-leader"},
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	common.RespondSuccess(w, map[string]string{"user": auth.GetSession(r.Context()).Username})
}

func newSigner() *auth.SessionSigner {
	return auth.NewSessionSigner([]byte("test-secret"), time.Hour, common.NewCacheService(time.Hour, time.Hour))
}

func withSession(t *testing.T, signer *auth.SessionSigner, roles ...string) *http.Request {
	t.Helper()
	token, _, err := signer.Issue(access.User{ID: "123456789012345678", Username: "alice", Roles: roles})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/all-data", nil)
	req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: token})
	return req
}

func TestAuthMiddleware(t *testing.T) {
	signer := newSigner()
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	h := AuthMiddleware(signer, auth.CookieOptions{}, reg)(http.HandlerFunc(okHandler))

	t.Run("no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), constants.MsgNoSession) {
			t.Errorf("Unexpected body %s", rr.Body.String())
		}
	})

	t.Run("tampered cookie is cleared", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "not-a-jwt"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Set-Cookie"), constants.SessionCookieName+"=;") {
			t.Errorf("Expected session cookie to be cleared, got %q", rr.Header().Get("Set-Cookie"))
		}
	})

	t.Run("valid session", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, withSession(t, signer, "role-sns"))
		if rr.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rr.Code)
		}
		if !strings.Contains(rr.Body.String(), "alice") {
			t.Errorf("Expected claims in context, got %s", rr.Body.String())
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		req := withSession(t, signer, "role-sns")
		claims, err := signer.Verify(context.Background(), auth.SessionToken(req))
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if err := signer.Revoke(context.Background(), claims); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("Expected 401, got %d", rr.Code)
		}
	})

	if got := testutil.ToFloat64(reg.AuthDenialsTotal.WithLabelValues("revoked_session")); got != 1 {
		t.Errorf("Expected 1 revoked denial, got %v", got)
	}
}

func TestGates(t *testing.T) {
	signer := newSigner()
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	authz := access.NewResolver(testTables)

	tests := []struct {
		name  string
		gate  func(access.Authorizer, *metrics.MetricsRegistry) func(http.Handler) http.Handler
		roles []string
		want  int
	}{
		{"weapon lead has access", RequireAnyAccess, []string{"role-sns"}, http.StatusOK},
		{"no roles", RequireAnyAccess, []string{"other"}, http.StatusForbidden},
		{"master gate rejects weapon lead", RequireMaster, []string{"role-sns"}, http.StatusForbidden},
		{"master gate admits master", RequireMaster, []string{"role-master"}, http.StatusOK},
		{"leadership gate rejects master", RequireLeadership, []string{"role-master"}, http.StatusForbidden},
		{"leadership gate admits leader", RequireLeadership, []string{"role-leader"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AuthMiddleware(signer, auth.CookieOptions{}, reg)(tt.gate(authz, reg)(http.HandlerFunc(okHandler)))
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, withSession(t, signer, tt.roles...))
			if rr.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, rr.Code, rr.Body.String())
			}
		})
	}

	if got := testutil.ToFloat64(reg.AuthDenialsTotal.WithLabelValues("master")); got != 1 {
		t.Errorf("Expected 1 master denial, got %v", got)
	}
}

func TestGates_WithoutSession(t *testing.T) {
	h := RequireMaster(access.NewResolver(testTables), nil)(http.HandlerFunc(okHandler))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rr.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	limiter := NewRateLimiter(2, time.Minute, reg)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.1:1234"); code != http.StatusNoContent {
			t.Fatalf("Expected request %d to pass, got %d", i, code)
		}
	}
	if code := call("10.0.0.1:5555"); code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", code)
	}
	if code := call("10.0.0.2:1234"); code != http.StatusNoContent {
		t.Errorf("Expected another client to pass, got %d", code)
	}

	// half a window refills one request
	now = now.Add(30 * time.Second)
	if code := call("10.0.0.1:1234"); code != http.StatusNoContent {
		t.Errorf("Expected refill after half a window, got %d", code)
	}

	now = now.Add(2 * time.Minute)
	call("10.0.0.3:1")
	if limiter.Len() != 1 {
		t.Errorf("Expected idle clients to be forgotten, got %d", limiter.Len())
	}
	if got := testutil.ToFloat64(reg.RateLimitedTotal); got != 1 {
		t.Errorf("Expected 1 rate limited request, got %v", got)
	}
}

func TestRequestIDAndMetrics(t *testing.T) {
	reg := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware, Logging, MetricsMiddleware(reg))
	r.Get("/api/statics", func(w http.ResponseWriter, r *http.Request) {
		if auth.GetRequestID(r.Context()) == "" {
			t.Error("Expected request id in context")
		}
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/statics?preset=preset2", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/statics", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("Expected incoming request id to be kept, got %s", rr.Header().Get("X-Request-ID"))
	}

	if got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/api/statics", "GET", "418")); got != 2 {
		t.Errorf("Expected 2 requests recorded under the route pattern, got %v", got)
	}
}

package api

import (
	"context"
	"net/http"
	"time"

	"wohee/vodtracker/internal/common"
	"wohee/vodtracker/internal/models/entities"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler handles GET /healthCheck
//
// Pings the document store and, when it is redis backed, the revocation
// cache. Any dependency down makes the whole check report down with a 503.
func (h *Handlers) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		services := make(map[string]entities.ServiceStatus)
		services["document_store"] = checkService(ctx, h.deps.Store, h.deps.Config.Store.Backend+" reachable")
		if p, ok := h.deps.Revoked.(pinger); ok {
			services["redis"] = checkService(ctx, p, "Redis Connected")
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		now := time.Now()
		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  h.deps.UpSince,
			Uptime:   now.Sub(h.deps.UpSince).Round(time.Second).String(),
		}
		if expires, ok := h.deps.Services.Members.Cache().ExpiresAt(); ok {
			resp.CachedUntil = &expires
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		common.RespondJSON(w, code, resp)
	}
}

func checkService(ctx context.Context, p pinger, okDetails string) entities.ServiceStatus {
	start := time.Now()
	err := p.Ping(ctx)
	latency := time.Since(start).Round(time.Millisecond).String()
	if err != nil {
		return entities.ServiceStatus{Status: "down", Details: err.Error(), Latency: latency}
	}
	return entities.ServiceStatus{Status: "ok", Details: okDetails, Latency: latency}
}

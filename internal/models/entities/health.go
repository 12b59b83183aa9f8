package entities

import "time"

// ServiceStatus is the health of one dependency.
type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
	Latency string `json:"latency,omitempty"`
}

type HealthCheckResponse struct {
	Status      string                   `json:"status"`
	Services    map[string]ServiceStatus `json:"services"`
	UpSince     time.Time                `json:"up_since"`
	Uptime      string                   `json:"uptime"`
	CachedUntil *time.Time               `json:"member_cache_expires,omitempty"`
}

package http

import (
	"github.com/MKhiriev/go-auth-gate/internal/ratelimit"
	"github.com/MKhiriev/go-auth-gate/models"
)

// RateLimiter is the part of *ratelimit.Limiter the gate and the admin
// endpoints use.
type RateLimiter interface {
	Allow(key string, tier models.Tier, endpoint string) ratelimit.Decision
	Remaining(key string) int
	Reset(key string)
	Info(key string) (models.RateLimitInfo, bool)
}

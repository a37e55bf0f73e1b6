package ratelimit

import (
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/models"
	"golang.org/x/time/rate"
)

// Limit is the bucket shape for one key.
type Limit struct {
	// Capacity is the maximum number of tokens a bucket can hold.
	Capacity int
	// RefillTokens are added, spread evenly, over every RefillInterval.
	RefillTokens   int
	RefillInterval time.Duration
}

// Rate converts the refill into a golang.org/x/time/rate limit.
func (l Limit) Rate() rate.Limit {
	if l.RefillTokens <= 0 || l.RefillInterval <= 0 {
		return 0
	}
	return rate.Every(l.RefillInterval / time.Duration(l.RefillTokens))
}

// Policy resolves the Limit for a tier and endpoint class.
type Policy struct {
	tiers     map[models.Tier]Limit
	endpoints map[string]int
	interval  time.Duration
}

// NewPolicy builds a Policy from the rate-limit configuration.
func NewPolicy(cfg config.RateLimit) *Policy {
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = time.Minute
	}

	tier := func(t config.Tier) Limit {
		return Limit{
			Capacity:       max(t.Burst, 1),
			RefillTokens:   max(t.Requests, 1),
			RefillInterval: interval,
		}
	}

	endpoints := make(map[string]int, len(cfg.Endpoints))
	for endpoint, requests := range cfg.Endpoints {
		if requests > 0 {
			endpoints[endpoint] = requests
		}
	}

	return &Policy{
		tiers: map[models.Tier]Limit{
			models.TierAnonymous:     tier(cfg.Anonymous),
			models.TierAuthenticated: tier(cfg.Authenticated),
			models.TierAdmin:         tier(cfg.Admin),
		},
		endpoints: endpoints,
		interval:  interval,
	}
}

// LimitFor returns the limit for a caller of tier hitting endpoint.
//
// An endpoint override keeps its own refill rate while the capacity is
// capped at a third of that rate and never exceeds the tier burst.
func (p *Policy) LimitFor(tier models.Tier, endpoint string) Limit {
	base, ok := p.tiers[tier]
	if !ok {
		base = p.tiers[models.TierAnonymous]
	}

	requests, ok := p.endpoints[endpoint]
	if !ok {
		return base
	}

	return Limit{
		Capacity:       max(min(requests/3, base.Capacity), 1),
		RefillTokens:   requests,
		RefillInterval: p.interval,
	}
}

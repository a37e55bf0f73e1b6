package models

import "time"

// Tier selects the default rate-limit policy for a request.
type Tier int

const (
	TierAnonymous Tier = iota
	TierAuthenticated
	TierAdmin
)

// String returns the tier name used in logs and admin responses.
func (t Tier) String() string {
	switch t {
	case TierAnonymous:
		return "anonymous"
	case TierAuthenticated:
		return "authenticated"
	case TierAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// TierForRoles picks the tier for an authenticated caller holding roles.
func TierForRoles(roles []string) Tier {
	for _, r := range roles {
		if r == RoleAdmin {
			return TierAdmin
		}
	}
	return TierAuthenticated
}

// RateLimitInfo describes the state of one bucket.
type RateLimitInfo struct {
	Key            string        `json:"key"`
	Endpoint       string        `json:"endpoint"`
	Tier           string        `json:"tier"`
	Remaining      int           `json:"remainingTokens"`
	Capacity       int           `json:"capacity"`
	RefillTokens   int           `json:"refillTokens"`
	RefillInterval time.Duration `json:"-"`
	RefillSeconds  int64         `json:"refillPeriodSeconds"`
}

// RateLimitExceededResponse is the JSON body of a 429 response.
type RateLimitExceededResponse struct {
	Error             string `json:"error"`
	Message           string `json:"message"`
	Timestamp         int64  `json:"timestamp"`
	Path              string `json:"path"`
	RemainingRequests int    `json:"remainingRequests"`
	RetryAfterSeconds int64  `json:"retryAfterSeconds"`
}

// RateLimitRemainingResponse is returned by the admin "remaining" endpoint.
type RateLimitRemainingResponse struct {
	Key       string `json:"key"`
	Remaining int    `json:"remainingTokens"`
}

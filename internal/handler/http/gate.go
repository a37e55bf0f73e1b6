// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-auth-gate/internal/app"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/ratelimit"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
)

// Rate limit response headers.
const (
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
	headerRateLimitReset     = "X-RateLimit-Reset"
	headerRetryAfter         = "Retry-After"
)

type gateOutcome int

const (
	// gateContinue hands the request to the next stage.
	gateContinue gateOutcome = iota
	// gateBypass skips the remaining stages and serves the request as is.
	gateBypass
	// gateStop means the stage has written the response.
	gateStop
)

// gateRequest is what the stages know about a request so far.
type gateRequest struct {
	r *http.Request

	claims   *models.TokenClaims
	tier     models.Tier
	username string
}

type gateStage func(w http.ResponseWriter, req *gateRequest) gateOutcome

// gate runs every request through the ordered stage list before it reaches
// the router.
func (h *Handler) gate(next http.Handler) http.Handler {
	stages := []gateStage{
		h.skipStage,
		h.tokenStage,
		h.rateLimitStage,
		h.identityStage,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &gateRequest{r: r, tier: models.TierAnonymous}

	stages:
		for _, stage := range stages {
			switch stage(w, req) {
			case gateStop:
				return
			case gateBypass:
				break stages
			}
		}

		next.ServeHTTP(w, req.r)
	})
}

// skipStage lets CORS preflights and configured path prefixes through
// without limiting or authentication.
func (h *Handler) skipStage(_ http.ResponseWriter, req *gateRequest) gateOutcome {
	if req.r.Method == http.MethodOptions {
		return gateBypass
	}

	path := req.r.URL.Path
	for _, prefix := range h.skipPaths {
		if strings.HasPrefix(path, prefix) {
			return gateBypass
		}
	}
	return gateContinue
}

// tokenStage derives the tier and the key owner from the bearer token.
// A missing or unusable token leaves the request anonymous.
func (h *Handler) tokenStage(_ http.ResponseWriter, req *gateRequest) gateOutcome {
	header := req.r.Header.Get("Authorization")
	if header == "" {
		return gateContinue
	}

	log := logger.FromRequest(req.r)

	token, err := utils.ParseBearerToken(header)
	if err != nil {
		log.Debug().Err(err).Msg("ignoring authorization header")
		return gateContinue
	}

	claims, err := h.services.TokenService.Verify(token, h.now())
	if err != nil {
		log.Debug().Err(err).Msg("bearer token rejected")
		return gateContinue
	}

	req.claims = &claims
	req.username = claims.Subject
	req.tier = models.TierForRoles(claims.Roles)
	return gateContinue
}

// rateLimitStage consumes one token from the caller's bucket and answers 429
// when the bucket is empty.
func (h *Handler) rateLimitStage(w http.ResponseWriter, req *gateRequest) gateOutcome {
	endpoint := ratelimit.NormalizeEndpoint(req.r.URL.Path)
	key := ratelimit.BuildKey(req.username, utils.ClientIP(req.r, h.trustProxyHeaders), endpoint)

	decision := h.limiter.Allow(key, req.tier, endpoint)

	header := w.Header()
	header.Set(headerRateLimitLimit, strconv.Itoa(decision.Limit))
	header.Set(headerRateLimitRemaining, strconv.Itoa(decision.Remaining))
	header.Set(headerRateLimitReset, strconv.FormatInt(decision.ResetAt.Unix(), 10))

	if decision.Allowed {
		return gateContinue
	}

	retryAfter := max(int64(math.Ceil(decision.RetryAfter.Seconds())), 1)
	header.Set(headerRetryAfter, strconv.FormatInt(retryAfter, 10))

	logger.FromRequest(req.r).Warn().
		Str("key", key).
		Str("tier", req.tier.String()).
		Int64("retry_after", retryAfter).
		Msg("rate limit exceeded")

	_, _ = utils.WriteJSON(w, models.RateLimitExceededResponse{
		Error:             "Too Many Requests",
		Message:           app.MsgRateLimitExceeded,
		Timestamp:         h.now().UnixMilli(),
		Path:              req.r.URL.Path,
		RemainingRequests: decision.Remaining,
		RetryAfterSeconds: retryAfter,
	}, http.StatusTooManyRequests)

	return gateStop
}

// identityStage re-reads the token subject and attaches a principal when
// the account is still usable. The token alone never authenticates.
func (h *Handler) identityStage(_ http.ResponseWriter, req *gateRequest) gateOutcome {
	if req.claims == nil {
		return gateContinue
	}

	ctx := req.r.Context()
	log := logger.FromRequest(req.r)

	identity, err := h.services.AuthService.GetIdentity(ctx, req.username)
	switch {
	case errors.Is(err, service.ErrIdentityNotFound):
		log.Debug().Str("username", req.username).Msg("token subject no longer exists")
		return gateContinue
	case err != nil:
		log.Err(err).Str("username", req.username).Msg("error resolving token subject")
		return gateContinue
	}

	if !identity.CanAuthenticate(h.now()) {
		log.Debug().Str("username", req.username).Msg("token subject cannot authenticate")
		return gateContinue
	}

	req.r = req.r.WithContext(utils.WithPrincipal(ctx, identity.Principal()))
	return gateContinue
}

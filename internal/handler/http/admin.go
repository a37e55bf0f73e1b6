package http

import (
	"net/http"

	"github.com/MKhiriev/go-auth-gate/internal/app"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/go-chi/chi/v5"
)

// Rate limit keys contain colons and may contain slashes, so the admin
// routes take them from the wildcard segment.
func rateLimitKey(r *http.Request) string {
	return chi.URLParam(r, "*")
}

func (h *Handler) rateLimitStatus(w http.ResponseWriter, r *http.Request) {
	info, ok := h.limiter.Info(rateLimitKey(r))
	if !ok {
		writeError(w, r, ErrBucketNotFound)
		return
	}

	_, _ = utils.WriteJSON(w, info, http.StatusOK)
}

func (h *Handler) rateLimitRemaining(w http.ResponseWriter, r *http.Request) {
	key := rateLimitKey(r)

	_, _ = utils.WriteJSON(w, models.RateLimitRemainingResponse{
		Key:       key,
		Remaining: h.limiter.Remaining(key),
	}, http.StatusOK)
}

func (h *Handler) rateLimitReset(w http.ResponseWriter, r *http.Request) {
	key := rateLimitKey(r)
	h.limiter.Reset(key)

	principal, _ := utils.PrincipalFromContext(r.Context())
	logger.FromRequest(r).Info().Str("key", key).Str("by", principal.Username).Msg("rate limit reset")

	_, _ = utils.WriteJSON(w, models.MessageResponse{Message: app.MsgRateLimitReset + key}, http.StatusOK)
}

package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-auth-gate/internal/app"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
)

func (h *Handler) twoFactorStatus(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w, r)
	if !ok {
		return
	}

	status := models.TwoFactorStatus{Enabled: h.services.TwoFactorService.Status(identity)}
	_, _ = utils.WriteJSON(w, status, http.StatusOK)
}

func (h *Handler) enableTwoFactor(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w, r)
	if !ok {
		return
	}

	setup, err := h.services.TwoFactorService.Provision(r.Context(), identity)
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, setup, http.StatusOK)
}

func (h *Handler) verifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.checkTwoFactorCode(w, r, h.services.TwoFactorService.VerifyAndEnable, app.MsgTwoFactorVerified)
}

func (h *Handler) disableTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.checkTwoFactorCode(w, r, h.services.TwoFactorService.Disable, app.MsgTwoFactorDisabled)
}

type twoFactorCheck func(ctx context.Context, identity models.Identity, code string) (bool, error)

// checkTwoFactorCode runs check with the code from the body. A malformed code
// is a 400, a wrong one a 401.
func (h *Handler) checkTwoFactorCode(w http.ResponseWriter, r *http.Request, check twoFactorCheck, message string) {
	identity, ok := h.currentIdentity(w, r)
	if !ok {
		return
	}

	var request models.TwoFactorCodeRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	valid, err := check(r.Context(), identity, request.Code)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !valid {
		logger.FromRequest(r).Debug().Str("username", identity.Username).Msg("wrong 2FA code")
		writeError(w, r, service.ErrTwoFactorInvalid)
		return
	}

	_, _ = utils.WriteJSON(w, models.MessageResponse{Message: message}, http.StatusOK)
}

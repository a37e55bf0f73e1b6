package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MKhiriev/go-auth-gate/internal/app"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
)

func (h *Handler) signin(w http.ResponseWriter, r *http.Request) {
	var request models.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, err := h.services.AuthService.Login(r.Context(), request)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().
		Str("username", result.Username).
		Stringer("status", result.Status).
		Msg("password login")

	_, _ = utils.WriteJSON(w, models.NewLoginResponse(result), http.StatusOK)
}

// signinTwoFactor completes a password login that stopped at the second
// factor. The federated flow finishes the same way, see federatedVerifyTwoFactor.
func (h *Handler) signinTwoFactor(w http.ResponseWriter, r *http.Request) {
	var request models.TwoFactorLoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	result, err := h.services.AuthService.CompleteTwoFactorLogin(r.Context(), request.Username, request.Code)
	if err != nil {
		writeError(w, r, publicTwoFactorLoginError(r, request.Username, err))
		return
	}

	_, _ = utils.WriteJSON(w, models.NewLoginResponse(result), http.StatusOK)
}

// publicTwoFactorLoginError hides whether the username exists or is usable:
// the endpoint is public, so those failures read like a wrong code.
func publicTwoFactorLoginError(r *http.Request, username string, err error) error {
	if errors.Is(err, service.ErrIdentityNotFound) || errors.Is(err, service.ErrBadCredentials) {
		logger.FromRequest(r).Debug().Err(err).Str("username", username).Msg("second factor login rejected")
		return service.ErrTwoFactorInvalid
	}
	return err
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var request models.SignupRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	principal, ok := utils.PrincipalFromContext(r.Context())
	grantAdmin := ok && principal.HasRole(models.RoleAdmin)

	identity, err := h.services.AuthService.Register(r.Context(), request, grantAdmin)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromRequest(r).Info().
		Int64("id", identity.ID).
		Str("username", identity.Username).
		Strs("roles", identity.Roles).
		Msg("identity registered")

	_, _ = utils.WriteJSON(w, models.MessageResponse{Message: app.MsgUserRegistered}, http.StatusOK)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.currentIdentity(w, r)
	if !ok {
		return
	}

	_, _ = utils.WriteJSON(w, identity.Info(), http.StatusOK)
}

func (h *Handler) currentUsername(w http.ResponseWriter, r *http.Request) {
	principal, _ := utils.PrincipalFromContext(r.Context())

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(principal.Username))
}

// currentIdentity loads the full identity of the request principal. It writes
// the error response itself and reports false on failure.
func (h *Handler) currentIdentity(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	principal, ok := utils.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, ErrAuthenticationRequired)
		return models.Identity{}, false
	}

	identity, err := h.services.AuthService.GetIdentity(r.Context(), principal.Username)
	if err != nil {
		writeError(w, r, err)
		return models.Identity{}, false
	}
	return identity, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logger.FromRequest(r).Err(err).Msg("Invalid JSON was passed")
		utils.WriteError(w, http.StatusBadRequest, ErrInvalidJSON.Error())
		return false
	}
	return true
}

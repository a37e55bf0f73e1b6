package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/MKhiriev/go-auth-gate/internal/app"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/go-chi/chi/v5"
)

const federatedFailure = "oauth2_failed"

func (h *Handler) federatedProviders(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, h.services.FederatedLoginService.Providers(), http.StatusOK)
}

// federatedAuthorize redirects the browser to the provider's consent page.
func (h *Handler) federatedAuthorize(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")

	redirectURL, err := h.services.FederatedLoginService.Begin(provider)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, redirectURL, http.StatusFound)
}

// federatedCallback finishes the authorization code flow and sends the
// browser to the frontend with the outcome in the query string.
func (h *Handler) federatedCallback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	provider := chi.URLParam(r, "provider")
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		log.Warn().Str("provider", provider).Str("error", providerErr).Msg("provider refused authorization")
		h.redirectToFrontend(w, r, url.Values{
			"error":   {federatedFailure},
			"message": {app.MsgAuthorizationDenied + providerErr},
		})
		return
	}

	result, err := h.services.FederatedLoginService.Complete(r.Context(), provider, query.Get("code"), query.Get("state"))
	if err != nil {
		log.Err(err).Str("provider", provider).Msg("federated login failed")
		h.redirectToFrontend(w, r, url.Values{
			"error":   {federatedFailure},
			"message": {federatedFailureMessage(err)},
		})
		return
	}

	if result.Status == models.LoginTwoFactorRequired {
		h.redirectToFrontend(w, r, url.Values{
			"requires2FA": {"true"},
			"username":    {result.Username},
			"provider":    {provider},
		})
		return
	}

	log.Info().Str("provider", provider).Str("username", result.Identity.Username).Msg("federated login")
	h.redirectToFrontend(w, r, url.Values{
		"token":    {result.Token.Token},
		"username": {result.Identity.Username},
		"email":    {result.Identity.Email},
		"provider": {provider},
		"success":  {"true"},
	})
}

// federatedVerifyTwoFactor completes a federated login that stopped at the
// second factor.
func (h *Handler) federatedVerifyTwoFactor(w http.ResponseWriter, r *http.Request) {
	h.signinTwoFactor(w, r)
}

func (h *Handler) redirectToFrontend(w http.ResponseWriter, r *http.Request, params url.Values) {
	target, err := url.Parse(h.frontendRedirectURL)
	if err != nil {
		logger.FromRequest(r).Err(err).Str("url", h.frontendRedirectURL).Msg("bad frontend redirect url")
		utils.WriteError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	query := target.Query()
	for key, values := range params {
		query[key] = values
	}
	target.RawQuery = query.Encode()

	http.Redirect(w, r, target.String(), http.StatusFound)
}

func federatedFailureMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUnknownProvider),
		errors.Is(err, service.ErrInvalidOAuthState),
		errors.Is(err, service.ErrBadCredentials),
		errors.Is(err, service.ErrFederatedLoginFailed):
		return messageFromError(err)
	default:
		return app.MsgFederatedLoginFailed
	}
}

package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

type googleUserInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

type googleProvider struct {
	oauthClient
	userInfoURL string
}

// NewGoogleProvider creates the Google OpenID Connect provider.
func NewGoogleProvider(cfg config.OAuthProvider, callbackBaseURL string, client *utils.HTTPClient) IdentityProvider {
	return &googleProvider{
		oauthClient: newOAuthClient(ProviderGoogle, cfg, callbackBaseURL, endpoints.Google, client),
		userInfoURL: googleUserInfoURL,
	}
}

func (p *googleProvider) Name() string {
	return ProviderGoogle
}

// Exchange returns the OpenID user info. An unverified email is dropped.
func (p *googleProvider) Exchange(ctx context.Context, code string) (models.ExternalIdentityClaim, error) {
	accessToken, err := p.exchange(ctx, code)
	if err != nil {
		return models.ExternalIdentityClaim{}, err
	}

	var info googleUserInfo
	if err = p.get(ctx, accessToken, p.userInfoURL, &info); err != nil {
		return models.ExternalIdentityClaim{}, fmt.Errorf("google userinfo: %w", err)
	}
	if info.Subject == "" {
		return models.ExternalIdentityClaim{}, ErrMissingSubject
	}

	claim := models.ExternalIdentityClaim{
		Provider: ProviderGoogle,
		Subject:  info.Subject,
		Name:     info.Name,
	}
	if info.EmailVerified {
		claim.Email = info.Email
	}
	return claim, nil
}

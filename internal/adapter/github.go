package adapter

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
	"golang.org/x/oauth2/endpoints"
)

const githubAPIURL = "https://api.github.com"

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

type githubProvider struct {
	oauthClient
	apiURL string
}

// NewGitHubProvider creates the GitHub provider.
func NewGitHubProvider(cfg config.OAuthProvider, callbackBaseURL string, client *utils.HTTPClient) IdentityProvider {
	return &githubProvider{
		oauthClient: newOAuthClient(ProviderGitHub, cfg, callbackBaseURL, endpoints.GitHub, client),
		apiURL:      githubAPIURL,
	}
}

func (p *githubProvider) Name() string {
	return ProviderGitHub
}

// Exchange returns the GitHub profile. When the profile email is private the
// primary verified address from /user/emails is used instead; if that call
// fails the claim is returned without an email.
func (p *githubProvider) Exchange(ctx context.Context, code string) (models.ExternalIdentityClaim, error) {
	accessToken, err := p.exchange(ctx, code)
	if err != nil {
		return models.ExternalIdentityClaim{}, err
	}

	var user githubUser
	if err = p.get(ctx, accessToken, p.apiURL+"/user", &user); err != nil {
		return models.ExternalIdentityClaim{}, fmt.Errorf("github user: %w", err)
	}
	if user.ID == 0 {
		return models.ExternalIdentityClaim{}, ErrMissingSubject
	}

	email := strings.TrimSpace(user.Email)
	if email == "" {
		email, err = p.primaryEmail(ctx, accessToken)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("login", user.Login).Msg("github emails unavailable")
		}
	}

	return models.ExternalIdentityClaim{
		Provider: ProviderGitHub,
		Subject:  strconv.FormatInt(user.ID, 10),
		Login:    user.Login,
		Email:    email,
		Name:     user.Name,
	}, nil
}

func (p *githubProvider) primaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []githubEmail
	if err := p.get(ctx, accessToken, p.apiURL+"/user/emails", &emails); err != nil {
		return "", fmt.Errorf("github emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

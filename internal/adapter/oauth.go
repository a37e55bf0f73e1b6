package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"golang.org/x/oauth2"
)

// Provider tags.
const (
	ProviderGoogle = "google"
	ProviderGitHub = "github"
)

// CallbackPath is the path prefix provider callbacks land on; the provider
// tag is appended.
const CallbackPath = "/login/oauth2/code/"

// oauthClient holds the plumbing shared by every provider: the oauth2
// configuration and the resty client used for both the token exchange and
// the API calls.
type oauthClient struct {
	config *oauth2.Config
	client *utils.HTTPClient
}

func newOAuthClient(name string, cfg config.OAuthProvider, callbackBaseURL string, endpoint oauth2.Endpoint, client *utils.HTTPClient) oauthClient {
	return oauthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  strings.TrimRight(callbackBaseURL, "/") + CallbackPath + name,
			Scopes:       cfg.Scopes,
		},
		client: client,
	}
}

func (c oauthClient) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state)
}

// exchange trades code for an access token. The token request goes through
// the same http.Client as the API calls, so it shares its timeout.
func (c oauthClient) exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client.GetClient())

	token, err := c.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCodeExchange, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrCodeExchange)
	}
	return token.AccessToken, nil
}

// get fetches url with the access token and decodes the JSON body into result.
func (c oauthClient) get(ctx context.Context, accessToken, url string, result any) error {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(result).
		Get(url)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	return mapHTTPError(resp)
}


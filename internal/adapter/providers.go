package adapter

import (
	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
)

// NewIdentityProviders builds every provider that has a client id
// configured, keyed by provider tag. Providers share one HTTP client.
func NewIdentityProviders(cfg config.OAuth, log *logger.Logger) map[string]IdentityProvider {
	client := utils.NewHTTPClient(cfg.RequestTimeout)
	providers := make(map[string]IdentityProvider, 2)

	if cfg.Google.ClientID != "" {
		providers[ProviderGoogle] = NewGoogleProvider(cfg.Google, cfg.CallbackBaseURL, client)
	}
	if cfg.GitHub.ClientID != "" {
		providers[ProviderGitHub] = NewGitHubProvider(cfg.GitHub, cfg.CallbackBaseURL, client)
	}

	for name := range providers {
		log.Info().Str("provider", name).Msg("federated login provider enabled")
	}
	return providers
}

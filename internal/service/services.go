package service

import (
	"github.com/MKhiriev/go-auth-gate/internal/adapter"
	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/crypto"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/store"
)

type Services struct {
	TokenService          TokenService
	AuthService           AuthService
	TwoFactorService      TwoFactorService
	IdentityResolver      IdentityResolver
	FederatedLoginService FederatedLoginService
}

func NewServices(storages *store.Storages, providers map[string]adapter.IdentityProvider, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	tokens := NewTokenService(cfg.App)
	twoFactor := NewTwoFactorService(storages.IdentityRepository, crypto.NewOTPAuthenticator(cfg.TwoFactor.Issuer), logger)
	resolver := NewIdentityResolver(storages.IdentityRepository, cfg.App, logger)

	auth := NewAuthService(
		storages.IdentityRepository,
		storages.RoleRepository,
		crypto.NewPasswordHasher(0),
		tokens,
		twoFactor,
		cfg.App,
		logger,
	)

	return &Services{
		TokenService:          tokens,
		AuthService:           NewAuthValidationService().Wrap(auth),
		TwoFactorService:      twoFactor,
		IdentityResolver:      resolver,
		FederatedLoginService: NewFederatedLoginService(providers, resolver, tokens, cfg.App, cfg.OAuth, logger),
	}
}

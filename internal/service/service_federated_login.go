package service

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/adapter"
	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/golang-jwt/jwt/v5"
)

// oauthStateAudience separates state values from auth tokens signed with the
// same key.
const oauthStateAudience = "oauth2-state"

// AuthorizationPath is where the login page sends the browser to start a
// federated login; the provider tag is appended.
const AuthorizationPath = "/oauth2/authorization/"

// oauthStateClaims is the signed, self-contained state parameter. It binds
// the round trip to one provider and expires after the configured TTL.
type oauthStateClaims struct {
	jwt.RegisteredClaims

	Provider string `json:"provider"`
}

type federatedLoginService struct {
	providers map[string]adapter.IdentityProvider
	resolver  IdentityResolver
	tokens    TokenService
	ids       *utils.UUIDGenerator

	signKey  string
	issuer   string
	stateTTL time.Duration

	now    func() time.Time
	logger *logger.Logger
}

// NewFederatedLoginService constructs a FederatedLoginService over the
// configured providers.
func NewFederatedLoginService(
	providers map[string]adapter.IdentityProvider,
	resolver IdentityResolver,
	tokens TokenService,
	appCfg config.App,
	oauthCfg config.OAuth,
	logger *logger.Logger,
) FederatedLoginService {
	return &federatedLoginService{
		providers: providers,
		resolver:  resolver,
		tokens:    tokens,
		ids:       utils.NewUUIDGenerator(),
		signKey:   appCfg.TokenSignKey,
		issuer:    appCfg.TokenIssuer,
		stateTTL:  oauthCfg.StateTTL,
		now:       time.Now,
		logger:    logger,
	}
}

// Providers lists the configured providers sorted by name.
func (s *federatedLoginService) Providers() []models.FederatedProvider {
	names := make([]string, 0, len(s.providers))
	for name := range s.providers {
		names = append(names, name)
	}
	slices.Sort(names)

	result := make([]models.FederatedProvider, 0, len(names))
	for _, name := range names {
		result = append(result, models.FederatedProvider{
			Name:             name,
			AuthorizationURL: AuthorizationPath + name,
		})
	}
	return result
}

func (s *federatedLoginService) Begin(provider string) (string, error) {
	p, ok := s.providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	state, err := s.signState(provider)
	if err != nil {
		return "", err
	}
	return p.AuthCodeURL(state), nil
}

func (s *federatedLoginService) Complete(ctx context.Context, provider, code, state string) (models.LoginResult, error) {
	log := logger.FromContext(ctx)

	p, ok := s.providers[provider]
	if !ok {
		return models.LoginResult{}, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	if err := s.verifyState(state, provider); err != nil {
		log.Info().Err(err).Str("provider", provider).Msg("oauth2 state rejected")
		return models.LoginResult{}, err
	}
	if code == "" {
		return models.LoginResult{}, fmt.Errorf("%w: missing authorization code", ErrFederatedLoginFailed)
	}

	claim, err := p.Exchange(ctx, code)
	if err != nil {
		log.Err(err).Str("provider", provider).Msg("provider exchange failed")
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrFederatedLoginFailed, err)
	}
	claim.Provider = p.Name()

	identity, err := s.resolver.Resolve(ctx, claim)
	if err != nil {
		return models.LoginResult{}, err
	}

	now := s.now()
	if !identity.CanAuthenticate(now) {
		log.Info().Int64("id", identity.ID).Msg("federated login refused for unusable account")
		return models.LoginResult{}, ErrBadCredentials
	}

	if identity.TwoFactorEnabled {
		return models.LoginResult{
			Status:   models.LoginTwoFactorRequired,
			Username: identity.Username,
			Identity: identity,
		}, nil
	}

	token, err := s.tokens.Issue(identity.Username, identity.Roles, now)
	if err != nil {
		return models.LoginResult{}, err
	}

	log.Info().Int64("id", identity.ID).Str("provider", provider).Msg("federated login succeeded")
	return models.LoginResult{
		Status:   models.LoginSucceeded,
		Username: identity.Username,
		Token:    token,
		Identity: identity,
	}, nil
}

func (s *federatedLoginService) signState(provider string) (string, error) {
	now := s.now().Truncate(time.Second)

	state, err := utils.SignJWT(oauthStateClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{oauthStateAudience},
			ID:        s.ids.Generate(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.stateTTL)),
		},
		Provider: provider,
	}, s.signKey)
	if err != nil {
		return "", fmt.Errorf("signing oauth2 state: %w", err)
	}
	return state, nil
}

func (s *federatedLoginService) verifyState(state, provider string) error {
	if state == "" {
		return fmt.Errorf("%w: missing", ErrInvalidOAuthState)
	}

	var claims oauthStateClaims
	err := utils.ParseJWT(state, &claims, s.signKey, s.now(),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(oauthStateAudience),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOAuthState, err)
	}
	if claims.Provider != provider {
		return fmt.Errorf("%w: issued for %q", ErrInvalidOAuthState, claims.Provider)
	}
	return nil
}

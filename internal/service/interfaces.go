package service

import (
	"context"
	"time"

	"github.com/MKhiriev/go-auth-gate/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock -exclude_interfaces=AuthServiceWrapper

// TokenService issues and verifies self-contained bearer tokens. Both
// operations are pure functions of their input and now.
type TokenService interface {
	Issue(subject string, roles []string, now time.Time) (models.AuthToken, error)

	// Verify checks signature, issuer and expiry. It returns one of
	// ErrTokenMalformed, ErrTokenSignatureInvalid or ErrTokenExpired.
	Verify(token string, now time.Time) (models.TokenClaims, error)
}

// AuthService is the password login path plus account bootstrap.
type AuthService interface {
	// Login returns LoginSucceeded with a token, or LoginTwoFactorRequired
	// when the identity has a second factor enabled.
	Login(ctx context.Context, request models.LoginRequest) (models.LoginResult, error)
	CompleteTwoFactorLogin(ctx context.Context, username, code string) (models.LoginResult, error)

	// Register creates a password identity. grantAdmin allows the "admin"
	// role token and must only be true for an authenticated administrator.
	Register(ctx context.Context, request models.SignupRequest, grantAdmin bool) (models.Identity, error)
	GetIdentity(ctx context.Context, username string) (models.Identity, error)

	// EnsureDefaults fails with ErrConfigurationMissing when the default role
	// is absent and creates the configured admin account if needed.
	EnsureDefaults(ctx context.Context) error
}

// AuthServiceWrapper defines middleware composition for AuthService.
// Implementations wrap an existing AuthService to add behavior such as
// logging or validating.
type AuthServiceWrapper interface {
	Wrap(AuthService) AuthService // returns a decorated AuthService applying additional behavior
}

// TwoFactorService manages the TOTP second factor of an identity.
//
// Codes are normalised before checking: spaces and hyphens are dropped and
// the rest must be exactly six digits, otherwise ErrTwoFactorCodeFormat is
// returned without consulting the verifier.
type TwoFactorService interface {
	Provision(ctx context.Context, identity models.Identity) (models.TwoFactorSetup, error)
	VerifyAndEnable(ctx context.Context, identity models.Identity, code string) (bool, error)
	Verify(ctx context.Context, identity models.Identity, code string) (bool, error)
	Disable(ctx context.Context, identity models.Identity, code string) (bool, error)
	Status(identity models.Identity) bool
}

// IdentityResolver maps an external claim onto a local identity, creating
// one on first sight.
type IdentityResolver interface {
	Resolve(ctx context.Context, claim models.ExternalIdentityClaim) (models.Identity, error)
}

// FederatedLoginService drives the authorization-code round trip with an
// external provider.
type FederatedLoginService interface {
	Providers() []models.FederatedProvider

	// Begin returns the provider authorization URL carrying a signed state.
	Begin(provider string) (string, error)

	// Complete checks state, exchanges code and resolves the identity. The
	// result may be LoginTwoFactorRequired for an existing identity.
	Complete(ctx context.Context, provider, code, state string) (models.LoginResult, error)
}

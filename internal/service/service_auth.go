package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/crypto"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/store"
	"github.com/MKhiriev/go-auth-gate/models"
)

// passwordAccountLifetime is the account and credentials expiry given to
// identities created through signup.
const passwordAccountLifetime = 365 * 24 * time.Hour

// authService is the concrete implementation of AuthService.
// It checks credentials against an IdentityRepository using a
// PasswordHasher and issues tokens through a TokenService.
type authService struct {
	// identities is the data-access layer used to create and look up identities.
	identities store.IdentityRepository

	// roles is consulted at startup to make sure the default role exists.
	roles store.RoleRepository

	hasher    crypto.PasswordHasher
	tokens    TokenService
	twoFactor TwoFactorService

	// defaultRole is granted to every identity created without an explicit
	// "admin" role token.
	defaultRole string

	// admin describes the account bootstrapped by EnsureDefaults.
	adminUsername string
	adminEmail    string
	adminPassword string

	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(
	identities store.IdentityRepository,
	roles store.RoleRepository,
	hasher crypto.PasswordHasher,
	tokens TokenService,
	twoFactor TwoFactorService,
	cfg config.App,
	logger *logger.Logger,
) AuthService {
	return &authService{
		identities:    identities,
		roles:         roles,
		hasher:        hasher,
		tokens:        tokens,
		twoFactor:     twoFactor,
		defaultRole:   cfg.DefaultRole,
		adminUsername: cfg.AdminUsername,
		adminEmail:    cfg.AdminEmail,
		adminPassword: cfg.AdminPassword,
		now:           time.Now,
		logger:        logger,
	}
}

// Login authenticates by username, falling back to email.
//
// Every credential failure yields ErrBadCredentials: unknown account,
// federated-only account, wrong password and an account that is disabled,
// locked or expired. A password comparison runs in each of these cases so
// response time does not reveal which one happened.
func (a *authService) Login(ctx context.Context, request models.LoginRequest) (models.LoginResult, error) {
	log := logger.FromContext(ctx)

	identity, err := a.findByLogin(ctx, request.Username)
	if errors.Is(err, store.ErrIdentityNotFound) {
		a.hasher.Compare("", request.Password)
		log.Debug().Str("login", request.Username).Msg("login for unknown identity")
		return models.LoginResult{}, ErrBadCredentials
	}
	if err != nil {
		log.Err(err).Str("login", request.Username).Msg("identity lookup failed")
		return models.LoginResult{}, fmt.Errorf("identity lookup failed: %w", err)
	}

	if !identity.HasPassword() {
		a.hasher.Compare("", request.Password)
		log.Debug().Int64("id", identity.ID).Str("sign_up", identity.SignUpMethod).Msg("password login for federated-only identity")
		return models.LoginResult{}, ErrBadCredentials
	}
	if !a.hasher.Compare(identity.PasswordHash, request.Password) {
		log.Debug().Int64("id", identity.ID).Msg("wrong password")
		return models.LoginResult{}, ErrBadCredentials
	}

	if !identity.CanAuthenticate(a.now()) {
		log.Info().Int64("id", identity.ID).
			Bool("enabled", identity.Enabled).
			Bool("locked", identity.Locked).
			Msg("login refused for unusable account")
		return models.LoginResult{}, ErrBadCredentials
	}

	if identity.TwoFactorEnabled {
		return models.LoginResult{
			Status:   models.LoginTwoFactorRequired,
			Username: identity.Username,
		}, nil
	}

	return a.succeed(identity)
}

// CompleteTwoFactorLogin finishes a login that stopped at
// LoginTwoFactorRequired.
func (a *authService) CompleteTwoFactorLogin(ctx context.Context, username, code string) (models.LoginResult, error) {
	log := logger.FromContext(ctx)

	identity, err := a.identities.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrIdentityNotFound) {
		return models.LoginResult{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, username)
	}
	if err != nil {
		log.Err(err).Str("username", username).Msg("identity lookup failed")
		return models.LoginResult{}, fmt.Errorf("identity lookup failed: %w", err)
	}

	if !identity.CanAuthenticate(a.now()) {
		return models.LoginResult{}, ErrBadCredentials
	}
	if !identity.TwoFactorEnabled {
		log.Info().Int64("id", identity.ID).Msg("second factor submitted for identity without 2FA")
		return models.LoginResult{}, ErrTwoFactorInvalid
	}

	ok, err := a.twoFactor.Verify(ctx, identity, code)
	if err != nil {
		return models.LoginResult{}, err
	}
	if !ok {
		log.Info().Int64("id", identity.ID).Msg("invalid second factor on login")
		return models.LoginResult{}, ErrTwoFactorInvalid
	}

	return a.succeed(identity)
}

// Register creates an identity with a bcrypt-hashed password.
//
// The role token is case-insensitive: empty or "user" grants the default
// role, "admin" grants RoleAdmin when grantAdmin is set, anything else is
// ErrUnknownRole. Collisions are reported as ErrAccountConflict wrapping the
// store error, so callers can still tell username from email.
func (a *authService) Register(ctx context.Context, request models.SignupRequest, grantAdmin bool) (models.Identity, error) {
	log := logger.FromContext(ctx)

	role, err := a.roleFromToken(request.Role, grantAdmin)
	if err != nil {
		log.Info().Str("role", request.Role).Err(err).Msg("signup with rejected role")
		return models.Identity{}, err
	}

	created, err := a.createPasswordIdentity(ctx, request.Username, request.Email, request.Password, role)
	if err != nil {
		log.Err(err).Str("username", request.Username).Msg("identity creation ended with error")
		return models.Identity{}, err
	}

	log.Info().Int64("id", created.ID).Str("username", created.Username).Msg("identity registered")
	return created, nil
}

func (a *authService) GetIdentity(ctx context.Context, username string) (models.Identity, error) {
	identity, err := a.identities.FindByUsername(ctx, username)
	if errors.Is(err, store.ErrIdentityNotFound) {
		return models.Identity{}, fmt.Errorf("%w: %s", ErrIdentityNotFound, username)
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("identity lookup failed: %w", err)
	}
	return identity, nil
}

func (a *authService) EnsureDefaults(ctx context.Context) error {
	log := logger.FromContext(ctx)

	exists, err := a.roles.RoleExists(ctx, a.defaultRole)
	if err != nil {
		return fmt.Errorf("checking default role: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: default role %q", ErrConfigurationMissing, a.defaultRole)
	}

	if a.adminUsername == "" {
		return nil
	}

	existing, err := a.identities.FindByUsername(ctx, a.adminUsername)
	if err == nil {
		if !existing.IsAdmin() {
			log.Warn().Int64("id", existing.ID).Str("username", existing.Username).
				Msg("configured admin account exists without the admin role, leaving it as is")
		}
		return nil
	}
	if !errors.Is(err, store.ErrIdentityNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	admin, err := a.createPasswordIdentity(ctx, a.adminUsername, a.adminEmail, a.adminPassword, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	log.Info().Int64("id", admin.ID).Str("username", admin.Username).Msg("admin account created")
	return nil
}

func (a *authService) findByLogin(ctx context.Context, login string) (models.Identity, error) {
	identity, err := a.identities.FindByUsername(ctx, login)
	if !errors.Is(err, store.ErrIdentityNotFound) {
		return identity, err
	}
	return a.identities.FindByEmail(ctx, login)
}

func (a *authService) succeed(identity models.Identity) (models.LoginResult, error) {
	token, err := a.tokens.Issue(identity.Username, identity.Roles, a.now())
	if err != nil {
		return models.LoginResult{}, err
	}

	return models.LoginResult{
		Status:   models.LoginSucceeded,
		Username: identity.Username,
		Token:    token,
		Identity: identity,
	}, nil
}

func (a *authService) roleFromToken(token string, grantAdmin bool) (string, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "user":
		return a.defaultRole, nil
	case "admin":
		if !grantAdmin {
			return "", ErrRoleNotPermitted
		}
		return models.RoleAdmin, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, token)
	}
}

func (a *authService) createPasswordIdentity(ctx context.Context, username, email, password, role string) (models.Identity, error) {
	hash, err := a.hasher.Hash(password)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hashing password: %w", err)
	}

	now := a.now()
	created, err := a.identities.Create(ctx, models.Identity{
		Username:          username,
		Email:             email,
		PasswordHash:      hash,
		Roles:             []string{role},
		Enabled:           true,
		AccountExpiry:     now.Add(passwordAccountLifetime),
		CredentialsExpiry: now.Add(passwordAccountLifetime),
		SignUpMethod:      models.SignUpEmail,
	})

	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, store.ErrUsernameAlreadyExists), errors.Is(err, store.ErrEmailAlreadyExists):
		return models.Identity{}, fmt.Errorf("%w: %w", ErrAccountConflict, err)
	case errors.Is(err, store.ErrRoleNotFound):
		return models.Identity{}, fmt.Errorf("%w: role %q", ErrConfigurationMissing, role)
	default:
		return models.Identity{}, fmt.Errorf("identity creation failed: %w", err)
	}
}

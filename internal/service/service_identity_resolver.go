package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/store"
	"github.com/MKhiriev/go-auth-gate/models"
)

const (
	federatedAccountLifetime = 10 * 365 * 24 * time.Hour

	minUsernameLength = 3
	maxUsernameLength = 20

	// maxUsernameSuffix is the last numeric suffix tried before falling
	// back to a timestamp-derived one.
	maxUsernameSuffix = 999
	timestampBaseLen  = 10
)

type identityResolver struct {
	identities  store.IdentityRepository
	defaultRole string

	now    func() time.Time
	logger *logger.Logger
}

// NewIdentityResolver constructs an IdentityResolver that creates federated
// identities with the default role from cfg.
func NewIdentityResolver(identities store.IdentityRepository, cfg config.App, logger *logger.Logger) IdentityResolver {
	return &identityResolver{
		identities:  identities,
		defaultRole: cfg.DefaultRole,
		now:         time.Now,
		logger:      logger,
	}
}

// Resolve returns the identity owning the claim's email, creating it when
// there is none.
//
// Creation relies on the store's uniqueness constraints instead of a prior
// check: losing an email race re-reads the winner, losing a username race
// recomputes the username once. Anything beyond that is ErrAccountConflict.
func (r *identityResolver) Resolve(ctx context.Context, claim models.ExternalIdentityClaim) (models.Identity, error) {
	log := logger.FromContext(ctx).With().Str("provider", claim.Provider).Logger()

	email := claimEmail(claim)
	if email == "" {
		return models.Identity{}, fmt.Errorf("%w: provider returned neither email nor login", ErrFederatedLoginFailed)
	}

	existing, err := r.identities.FindByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrIdentityNotFound) {
		return models.Identity{}, fmt.Errorf("identity lookup by email failed: %w", err)
	}

	base := sanitizeUsername(candidateUsername(claim, email, r.now()))

	for attempt := 0; attempt < 2; attempt++ {
		username, err := r.availableUsername(ctx, base)
		if err != nil {
			return models.Identity{}, err
		}

		now := r.now()
		created, err := r.identities.Create(ctx, models.Identity{
			Username:          username,
			Email:             email,
			Roles:             []string{r.defaultRole},
			Enabled:           true,
			AccountExpiry:     now.Add(federatedAccountLifetime),
			CredentialsExpiry: now.Add(federatedAccountLifetime),
			SignUpMethod:      claim.Provider,
		})

		switch {
		case err == nil:
			log.Info().Int64("id", created.ID).Str("username", created.Username).Msg("federated identity created")
			return created, nil

		case errors.Is(err, store.ErrEmailAlreadyExists):
			log.Info().Str("email", email).Msg("lost identity creation race, re-reading by email")
			winner, findErr := r.identities.FindByEmail(ctx, email)
			if findErr != nil {
				return models.Identity{}, fmt.Errorf("%w: %w", ErrAccountConflict, findErr)
			}
			return winner, nil

		case errors.Is(err, store.ErrUsernameAlreadyExists):
			log.Info().Str("username", username).Msg("username taken concurrently, recomputing")
			continue

		case errors.Is(err, store.ErrRoleNotFound):
			return models.Identity{}, fmt.Errorf("%w: default role %q", ErrConfigurationMissing, r.defaultRole)

		default:
			return models.Identity{}, fmt.Errorf("federated identity creation failed: %w", err)
		}
	}

	return models.Identity{}, ErrAccountConflict
}

// availableUsername returns base or the first free base+N. The base is cut so
// that the result still fits maxUsernameLength.
func (r *identityResolver) availableUsername(ctx context.Context, base string) (string, error) {
	taken, err := r.identities.ExistsByUsername(ctx, base)
	if err != nil {
		return "", fmt.Errorf("username lookup failed: %w", err)
	}
	if !taken {
		return base, nil
	}

	for i := 1; i <= maxUsernameSuffix; i++ {
		suffix := strconv.Itoa(i)
		candidate := truncate(base, maxUsernameLength-len(suffix)) + suffix

		taken, err = r.identities.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("username lookup failed: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}

	return truncate(base, timestampBaseLen) + timestampSuffix(r.now()), nil
}

// claimEmail returns the asserted email, or login@provider.com when the
// provider withheld it.
func claimEmail(claim models.ExternalIdentityClaim) string {
	if email := strings.TrimSpace(claim.Email); email != "" {
		return email
	}

	login := strings.TrimSpace(claim.Login)
	if login == "" {
		login = strings.TrimSpace(claim.Subject)
	}
	if login == "" || claim.Provider == "" {
		return ""
	}
	return login + "@" + claim.Provider + ".com"
}

// candidateUsername picks, in order, the provider handle, the email local
// part, the display name, or a timestamp-based name.
func candidateUsername(claim models.ExternalIdentityClaim, email string, now time.Time) string {
	if login := sanitizeChars(claim.Login); login != "" {
		return login
	}
	if local, _, ok := strings.Cut(email, "@"); ok {
		if local = sanitizeChars(local); local != "" {
			return local
		}
	}
	if name := sanitizeChars(claim.Name); name != "" {
		return name
	}
	return "user" + timestampSuffix(now)
}

// sanitizeUsername lowercases and strips everything but [a-z0-9], prefixes
// "user" when the result is too short and cuts it to maxUsernameLength.
func sanitizeUsername(s string) string {
	s = sanitizeChars(s)
	if len(s) < minUsernameLength {
		s = "user" + s
	}
	return truncate(s, maxUsernameLength)
}

func sanitizeChars(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func timestampSuffix(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli()%10000, 10)
}

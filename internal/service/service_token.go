package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/golang-jwt/jwt/v5"
)

// tokenService signs HS256 tokens with a shared secret. All state is
// read-only after construction.
type tokenService struct {
	signKey  string
	issuer   string
	duration time.Duration
}

// NewTokenService constructs a TokenService from the token settings in cfg.
func NewTokenService(cfg config.App) TokenService {
	return &tokenService{
		signKey:  cfg.TokenSignKey,
		issuer:   cfg.TokenIssuer,
		duration: cfg.TokenDuration,
	}
}

func (s *tokenService) Issue(subject string, roles []string, now time.Time) (models.AuthToken, error) {
	token, err := utils.GenerateJWTToken(s.issuer, subject, roles, now, s.duration, s.signKey)
	if err != nil {
		return models.AuthToken{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}
	return token, nil
}

func (s *tokenService) Verify(token string, now time.Time) (models.TokenClaims, error) {
	claims, err := utils.ValidateAndParseJWTToken(token, s.signKey, s.issuer, now)
	if err != nil {
		return models.TokenClaims{}, classifyTokenError(err)
	}
	return claims, nil
}

// classifyTokenError collapses jwt validation errors into the three kinds
// callers act on. The signature is checked before the claims, so a forged
// token is never reported as expired.
func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenSignatureInvalid
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return ErrTokenMalformed
	}
}

package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidJWTParams is returned when a token is requested with an empty
// issuer, subject or sign key, or a non-positive duration.
var ErrInvalidJWTParams = errors.New("invalid params for generating JWT token")

// ErrEmptySubject is returned when a verified token has no "sub" claim.
var ErrEmptySubject = errors.New("empty subject error")

// SignJWT signs claims with HMAC-SHA256 and returns the compact form.
func SignJWT(claims jwt.Claims, signKey string) (string, error) {
	if signKey == "" {
		return "", ErrInvalidJWTParams
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(signKey))
	if err != nil {
		return "", fmt.Errorf("error occurred during signing JWT token: %w", err)
	}

	return signed, nil
}

// ParseJWT verifies tokenString against signKey and decodes it into claims.
// Only HS256 is accepted. Time-based claims are evaluated at now.
//
// The returned error wraps one of the jwt.Err* sentinels, so callers can tell
// an expired token from a forged one with errors.Is.
func ParseJWT(tokenString string, claims jwt.Claims, signKey string, now time.Time, opts ...jwt.ParserOption) error {
	parserOpts := append([]jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}, opts...)

	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return []byte(signKey), nil
	}, parserOpts...)
	if err != nil {
		return fmt.Errorf("error occurred validating and parsing token: %w", err)
	}

	return nil
}

// GenerateJWTToken issues an auth token for subject.
//
// The token carries iss, sub, iat (issuedAt) and exp (issuedAt + duration)
// plus the roles claim. NumericDate has second precision, so iat and exp
// are truncated to whole seconds.
//
//	token, err := utils.GenerateJWTToken("go-auth-gate", "alice", []string{"USER"}, time.Now(), time.Hour, key)
func GenerateJWTToken(issuer, subject string, roles []string, issuedAt time.Time, duration time.Duration, signKey string) (models.AuthToken, error) {
	if issuer == "" || subject == "" || duration <= 0 || signKey == "" {
		return models.AuthToken{}, ErrInvalidJWTParams
	}

	iat := issuedAt.Truncate(time.Second)
	exp := iat.Add(duration)
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Roles: roles,
	}

	signed, err := SignJWT(claims, signKey)
	if err != nil {
		return models.AuthToken{}, err
	}

	return models.AuthToken{
		Token:     signed,
		Subject:   subject,
		Roles:     roles,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}, nil
}

// ValidateAndParseJWTToken verifies an auth token at now and returns its
// claims. The signature, the issuer and expiry are checked, and the subject
// must be non-empty.
func ValidateAndParseJWTToken(tokenString, signKey, issuer string, now time.Time) (models.TokenClaims, error) {
	var claims models.TokenClaims
	if err := ParseJWT(tokenString, &claims, signKey, now, jwt.WithIssuer(issuer)); err != nil {
		return models.TokenClaims{}, err
	}

	if claims.Subject == "" {
		return models.TokenClaims{}, ErrEmptySubject
	}

	return claims, nil
}

// ParseBearerToken extracts the token from an "Authorization: Bearer <token>"
// header value. The scheme is matched case-insensitively.
func ParseBearerToken(authorizationHeader string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authorizationHeader), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", errors.New("invalid authorization header")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errors.New("empty bearer token")
	}

	return token, nil
}

package models

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the claim set carried by every auth token.
//
// It embeds [jwt.RegisteredClaims] for the standard claims (sub, iss, iat,
// exp) and adds the roles the subject held at issue time. Roles in a token
// are a hint for tiering only; authorization decisions use the roles of the
// re-resolved identity.
type TokenClaims struct {
	jwt.RegisteredClaims

	Roles []string `json:"roles,omitempty"`
}

// HasRole reports whether role was present at issue time.
func (c TokenClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// AuthToken is a signed, self-contained bearer token.
type AuthToken struct {
	// Token is the compact JWS form (base64url header.payload.signature).
	Token string `json:"token"`

	Subject   string    `json:"subject"`
	Roles     []string  `json:"roles"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// String returns the compact JWS serialization of the token.
func (t AuthToken) String() string {
	return t.Token
}

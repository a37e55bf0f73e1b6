package models

import (
	"slices"
	"time"
)

// Role names stored in the roles table.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Sign-up methods recorded on an identity.
const (
	SignUpEmail  = "email"
	SignUpGoogle = "google"
	SignUpGitHub = "github"
)

// Identity is a registered principal that can authenticate against the gate.
//
// PasswordHash is empty for identities created through federated login;
// such identities cannot use the password path. TwoFactorSecret is empty
// until a second factor has been provisioned, and TwoFactorEnabled is never
// true without a secret.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`

	// PasswordHash is a bcrypt hash. Never serialised.
	PasswordHash string `json:"-"`

	// Roles holds at least one role name (see RoleUser, RoleAdmin).
	Roles []string `json:"roles"`

	Enabled           bool      `json:"enabled"`
	Locked            bool      `json:"locked"`
	CredentialsExpiry time.Time `json:"credentialsExpiry"`
	AccountExpiry     time.Time `json:"accountExpiry"`

	// TwoFactorSecret is the base32 TOTP secret. Never serialised.
	TwoFactorSecret  string `json:"-"`
	TwoFactorEnabled bool   `json:"twoFactorEnabled"`

	SignUpMethod string    `json:"signUpMethod"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasRole reports whether the identity carries role.
func (i Identity) HasRole(role string) bool {
	return slices.Contains(i.Roles, role)
}

// IsAdmin reports whether the identity carries RoleAdmin.
func (i Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

// HasPassword reports whether the identity can use the password login path.
func (i Identity) HasPassword() bool {
	return i.PasswordHash != ""
}

// CanAuthenticate reports whether the account is usable at now: enabled,
// not locked, and neither the account nor its credentials have expired.
// A zero expiry means "never expires".
func (i Identity) CanAuthenticate(now time.Time) bool {
	if !i.Enabled || i.Locked {
		return false
	}
	if !i.AccountExpiry.IsZero() && !now.Before(i.AccountExpiry) {
		return false
	}
	if !i.CredentialsExpiry.IsZero() && !now.Before(i.CredentialsExpiry) {
		return false
	}
	return true
}

// Principal returns the request-scoped view of the identity.
func (i Identity) Principal() Principal {
	return Principal{
		ID:       i.ID,
		Username: i.Username,
		Roles:    slices.Clone(i.Roles),
	}
}

// Principal is what the request gate attaches to an authenticated request.
type Principal struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// HasRole reports whether the principal carries role.
func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

// IdentityInfo is the public view of an identity returned by /api/auth/user.
type IdentityInfo struct {
	ID                int64     `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Roles             []string  `json:"roles"`
	Enabled           bool      `json:"enabled"`
	Locked            bool      `json:"locked"`
	AccountExpiry     time.Time `json:"accountExpiryDate"`
	CredentialsExpiry time.Time `json:"credentialsExpiryDate"`
	TwoFactorEnabled  bool      `json:"isTwoFactorEnabled"`
	SignUpMethod      string    `json:"signUpMethod"`
	CreatedAt         time.Time `json:"createdDate"`
}

// Info converts the identity into its public representation.
func (i Identity) Info() IdentityInfo {
	return IdentityInfo{
		ID:                i.ID,
		Username:          i.Username,
		Email:             i.Email,
		Roles:             slices.Clone(i.Roles),
		Enabled:           i.Enabled,
		Locked:            i.Locked,
		AccountExpiry:     i.AccountExpiry,
		CredentialsExpiry: i.CredentialsExpiry,
		TwoFactorEnabled:  i.TwoFactorEnabled,
		SignUpMethod:      i.SignUpMethod,
		CreatedAt:         i.CreatedAt,
	}
}

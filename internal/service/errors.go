package service

import "errors"

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")

	ErrTokenCreationFailed   = errors.New("token creation failed")
	ErrTokenMalformed        = errors.New("token is malformed")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
	ErrTokenExpired          = errors.New("token is expired")

	// ErrBadCredentials deliberately does not say which part of the
	// credentials was wrong.
	ErrBadCredentials   = errors.New("bad credentials")
	ErrIdentityNotFound = errors.New("identity not found")

	ErrTwoFactorCodeFormat     = errors.New("verification code must be 6 digits")
	ErrTwoFactorInvalid        = errors.New("invalid verification code")
	ErrTwoFactorNotEnabled     = errors.New("two-factor authentication is not enabled")
	ErrTwoFactorAlreadyEnabled = errors.New("two-factor authentication is already enabled")
	ErrTwoFactorNotProvisioned = errors.New("two-factor authentication has not been set up")

	ErrUnknownRole      = errors.New("unknown role")
	ErrRoleNotPermitted = errors.New("role can only be granted by an administrator")
	ErrAccountConflict  = errors.New("username or email is already taken")

	// ErrConfigurationMissing means a role the service depends on is absent
	// from the store. It is fatal at startup.
	ErrConfigurationMissing = errors.New("required configuration is missing")

	ErrUnknownProvider      = errors.New("unknown identity provider")
	ErrInvalidOAuthState    = errors.New("invalid oauth2 state")
	ErrFederatedLoginFailed = errors.New("federated login failed")
)

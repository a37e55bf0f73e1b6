// Package app holds the fixed response messages of the gate, so the HTTP
// layer and its tests share one wording.
package app

const (
	MsgUserRegistered = "User registered successfully!"

	MsgTwoFactorVerified = "2FA verified"
	MsgTwoFactorDisabled = "2FA disabled"

	// MsgRateLimitExceeded is the message of every 429 body.
	MsgRateLimitExceeded = "Rate limit exceeded. Please try again later."

	MsgRateLimitReset = "Rate limit reset for key: "

	// MsgFederatedLoginFailed replaces the cause of a failed callback when
	// the cause is internal.
	MsgFederatedLoginFailed = "federated login could not be completed"
	MsgAuthorizationDenied  = "authorization was denied: "
)

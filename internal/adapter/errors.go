package adapter

import "errors"

var (
	ErrCodeExchange     = errors.New("authorization code exchange failed")
	ErrUnauthorized     = errors.New("provider rejected the access token")
	ErrProviderResponse = errors.New("unexpected provider response")
	ErrMissingSubject   = errors.New("provider did not return a user id")
)

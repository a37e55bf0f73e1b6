// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides outbound clients for federated identity
// providers.
//
// The primary abstraction is [IdentityProvider], which decouples the
// federated login flow from any particular provider. The package ships
// Google and GitHub implementations built on golang.org/x/oauth2 for the
// authorization-code exchange and resty for the user-info calls.
//
// Non-2xx provider responses are mapped by mapHTTPError onto the sentinel
// errors in errors.go so that callers can use [errors.Is].
package adapter

import (
	"context"

	"github.com/MKhiriev/go-auth-gate/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// IdentityProvider is one external OAuth2 provider.
type IdentityProvider interface {
	// Name is the lowercase provider tag used in URLs and as the sign-up
	// method of identities it creates.
	Name() string

	// AuthCodeURL returns the provider consent page URL carrying state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for an access token and returns
	// what the provider asserts about the user.
	Exchange(ctx context.Context, code string) (models.ExternalIdentityClaim, error)
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidJSON is reported when a request body cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrAuthenticationRequired is reported by requireAuth when the gate did
	// not attach a principal to the request.
	ErrAuthenticationRequired = errors.New("full authentication is required to access this resource")

	// ErrAccessDenied is reported by requireRole.
	ErrAccessDenied = errors.New("access denied")

	// ErrBucketNotFound is reported by the admin endpoints for a key that
	// has no live bucket.
	ErrBucketNotFound = errors.New("no rate limit bucket for key")
)

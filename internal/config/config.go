// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-auth-gate server. It aggregates all sub-configurations and is
// populated by merging built-in defaults, environment variables,
// command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds token parameters, the default role and the optional
	// bootstrap admin account.
	App App `envPrefix:"APP_"`

	// Storage holds the identity store connection settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address, timeouts and the gate skip-list.
	Server Server `envPrefix:"SERVER_"`

	// RateLimit holds tier defaults, endpoint overrides and bucket eviction.
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`

	// TwoFactor holds TOTP provisioning settings.
	TwoFactor TwoFactor `envPrefix:"TWO_FACTOR_"`

	// OAuth holds federated login providers and redirect targets.
	OAuth OAuth `envPrefix:"OAUTH_"`

	// Workers holds background worker intervals.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// TokenSignKey is the HMAC secret used to sign and verify auth tokens
	// and OAuth state values.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in, and required of, every token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is how long an issued token stays valid (e.g. "24h").
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// DefaultRole is granted to every new identity. It must exist in the
	// roles table or the server refuses to start.
	// Env: APP_DEFAULT_ROLE
	DefaultRole string `env:"DEFAULT_ROLE"`

	// AdminUsername, AdminEmail and AdminPassword describe an admin account
	// created at startup when absent. Leave AdminUsername empty to skip.
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	// LogLevel is a zerolog level name ("debug", "info", ...).
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`
}

// Storage groups the configuration for the identity store.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the identity store.
type DB struct {
	// DSN is the data source name. A postgres:// URL selects the pgx driver,
	// "memory" selects the in-process store, anything else is treated as a
	// SQLite file path.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`

	// Driver forces a backend ("postgres", "sqlite", "memory") instead of
	// inferring it from DSN.
	// Env: STORAGE_DB_DRIVER
	Driver string `env:"DRIVER"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address the HTTP server listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds handler execution.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// ShutdownTimeout bounds graceful shutdown.
	// Env: SERVER_SHUTDOWN_TIMEOUT
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`

	// SkipPaths are path prefixes that bypass rate limiting and token checks.
	// Env: SERVER_SKIP_PATHS (comma separated)
	SkipPaths []string `env:"SKIP_PATHS" envSeparator:","`

	// TrustProxyHeaders makes the client IP come from X-Forwarded-For /
	// X-Real-IP when present.
	// Env: SERVER_TRUST_PROXY_HEADERS
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS"`
}

// Tier is the default bucket policy for one caller class.
type Tier struct {
	// Requests is the number of tokens refilled per RateLimit.RefillInterval.
	Requests int `env:"REQUESTS"`
	// Burst is the bucket capacity.
	Burst int `env:"BURST"`
}

// RateLimit holds the token-bucket policy.
type RateLimit struct {
	Anonymous     Tier `envPrefix:"ANONYMOUS_"`
	Authenticated Tier `envPrefix:"AUTHENTICATED_"`
	Admin         Tier `envPrefix:"ADMIN_"`

	// RefillInterval is the window Requests are spread over.
	// Env: RATE_LIMIT_REFILL_INTERVAL
	RefillInterval time.Duration `env:"REFILL_INTERVAL"`

	// Endpoints overrides Requests per endpoint class.
	// Env: RATE_LIMIT_ENDPOINTS ("/api/auth/login:10,/api/notes:100")
	Endpoints map[string]int `env:"ENDPOINTS" envSeparator:"," envKeyValSeparator:":"`

	// IdleTTL is how long an untouched bucket is kept.
	// Env: RATE_LIMIT_IDLE_TTL
	IdleTTL time.Duration `env:"IDLE_TTL"`

	// MaxBuckets caps the number of live buckets; the sweeper drops the
	// oldest ones beyond it.
	// Env: RATE_LIMIT_MAX_BUCKETS
	MaxBuckets int `env:"MAX_BUCKETS"`
}

// TwoFactor holds TOTP provisioning settings.
type TwoFactor struct {
	// Issuer is shown by authenticator apps next to the account name.
	// Env: TWO_FACTOR_ISSUER
	Issuer string `env:"ISSUER"`
}

// OAuthProvider holds client credentials for one federated provider.
// A provider with an empty ClientID is disabled.
type OAuthProvider struct {
	ClientID     string   `env:"CLIENT_ID"`
	ClientSecret string   `env:"CLIENT_SECRET"`
	Scopes       []string `env:"SCOPES" envSeparator:","`
}

// OAuth holds federated login settings.
type OAuth struct {
	Google OAuthProvider `envPrefix:"GOOGLE_"`
	GitHub OAuthProvider `envPrefix:"GITHUB_"`

	// CallbackBaseURL is the public base URL of this server; provider
	// callbacks land on {CallbackBaseURL}/login/oauth2/code/{provider}.
	// Env: OAUTH_CALLBACK_BASE_URL
	CallbackBaseURL string `env:"CALLBACK_BASE_URL"`

	// FrontendRedirectURL receives the browser after the callback.
	// Env: OAUTH_FRONTEND_REDIRECT_URL
	FrontendRedirectURL string `env:"FRONTEND_REDIRECT_URL"`

	// StateTTL bounds how long an authorization round-trip may take.
	// Env: OAUTH_STATE_TTL
	StateTTL time.Duration `env:"STATE_TTL"`

	// RequestTimeout bounds calls to provider APIs.
	// Env: OAUTH_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds configuration for background worker processes.
type Workers struct {
	// RateLimitSweepInterval is how often idle buckets are evicted.
	// Env: WORKERS_RATE_LIMIT_SWEEP_INTERVAL
	RateLimitSweepInterval time.Duration `env:"RATE_LIMIT_SWEEP_INTERVAL"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags().
		withJSON().
		build()
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"strings"
)

// Supported values of DB.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const minTokenSignKeyLength = 32

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or an error wrapping one of the
// ErrInvalid*Configs sentinels otherwise.
func (cfg *StructuredConfig) validate() error {
	if len(cfg.App.TokenSignKey) < minTokenSignKeyLength {
		return fmt.Errorf("%w: token sign key must be at least %d bytes", ErrInvalidAppConfigs, minTokenSignKeyLength)
	}
	if cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: token issuer and a positive token duration are required", ErrInvalidAppConfigs)
	}
	if cfg.App.DefaultRole == "" {
		return fmt.Errorf("%w: default role is required", ErrInvalidAppConfigs)
	}
	if cfg.App.AdminUsername != "" && (cfg.App.AdminEmail == "" || cfg.App.AdminPassword == "") {
		return fmt.Errorf("%w: admin account needs email and password", ErrInvalidAppConfigs)
	}

	if _, err := cfg.Storage.DB.ResolveDriver(); err != nil {
		return err
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 || cfg.Server.ShutdownTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if err := cfg.RateLimit.validate(); err != nil {
		return err
	}

	if err := cfg.OAuth.validate(); err != nil {
		return err
	}

	if cfg.Workers.RateLimitSweepInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

// ResolveDriver returns the backend selected by Driver, or inferred from DSN
// when Driver is empty.
func (db DB) ResolveDriver() (string, error) {
	driver := strings.ToLower(strings.TrimSpace(db.Driver))
	dsn := strings.TrimSpace(db.DSN)

	if driver == "" {
		switch {
		case dsn == "" || dsn == DriverMemory:
			driver = DriverMemory
		case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
			driver = DriverPostgres
		default:
			driver = DriverSQLite
		}
	}

	switch driver {
	case DriverMemory:
		return driver, nil
	case DriverPostgres, DriverSQLite:
		if dsn == "" {
			return "", fmt.Errorf("%w: %s driver needs a DSN", ErrInvalidStorageConfigs, driver)
		}
		return driver, nil
	default:
		return "", fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, driver)
	}
}

func (r RateLimit) validate() error {
	for name, tier := range map[string]Tier{
		"anonymous":     r.Anonymous,
		"authenticated": r.Authenticated,
		"admin":         r.Admin,
	} {
		if tier.Requests <= 0 || tier.Burst <= 0 {
			return fmt.Errorf("%w: %s tier needs positive requests and burst", ErrInvalidRateLimitConfigs, name)
		}
	}
	if r.RefillInterval <= 0 || r.IdleTTL <= 0 {
		return fmt.Errorf("%w: refill interval and idle ttl must be positive", ErrInvalidRateLimitConfigs)
	}
	for endpoint, requests := range r.Endpoints {
		if requests <= 0 {
			return fmt.Errorf("%w: endpoint %s needs positive requests", ErrInvalidRateLimitConfigs, endpoint)
		}
	}
	if r.MaxBuckets < 0 {
		return fmt.Errorf("%w: max buckets cannot be negative", ErrInvalidRateLimitConfigs)
	}
	return nil
}

func (o OAuth) validate() error {
	for name, p := range map[string]OAuthProvider{"google": o.Google, "github": o.GitHub} {
		if p.ClientID != "" && p.ClientSecret == "" {
			return fmt.Errorf("%w: %s client secret is required", ErrInvalidOAuthConfigs, name)
		}
	}
	if !o.Enabled() {
		return nil
	}
	if o.CallbackBaseURL == "" || o.FrontendRedirectURL == "" || o.StateTTL <= 0 {
		return fmt.Errorf("%w: callback and frontend urls and state ttl are required", ErrInvalidOAuthConfigs)
	}
	return nil
}

// Enabled reports whether at least one provider is configured.
func (o OAuth) Enabled() bool {
	return o.Google.ClientID != "" || o.GitHub.ClientID != ""
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/crypto"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/store"
	"github.com/MKhiriev/go-auth-gate/models"
)

const twoFactorCodeLength = 6

type twoFactorService struct {
	identities store.IdentityRepository
	otp        crypto.OTPAuthenticator

	now    func() time.Time
	logger *logger.Logger
}

// NewTwoFactorService constructs a TwoFactorService storing secrets through
// identities.
func NewTwoFactorService(identities store.IdentityRepository, otp crypto.OTPAuthenticator, logger *logger.Logger) TwoFactorService {
	return &twoFactorService{
		identities: identities,
		otp:        otp,
		now:        time.Now,
		logger:     logger,
	}
}

// Provision stores a fresh secret as pending. Calling it again before the
// secret is confirmed replaces the pending secret.
func (s *twoFactorService) Provision(ctx context.Context, identity models.Identity) (models.TwoFactorSetup, error) {
	if identity.TwoFactorEnabled {
		return models.TwoFactorSetup{}, ErrTwoFactorAlreadyEnabled
	}

	secret, uri, err := s.otp.GenerateSecret(identity.Username)
	if err != nil {
		return models.TwoFactorSetup{}, fmt.Errorf("generating 2FA secret: %w", err)
	}

	if err = s.identities.UpdateTwoFactor(ctx, identity.ID, secret, false); err != nil {
		return models.TwoFactorSetup{}, fmt.Errorf("storing pending 2FA secret: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("id", identity.ID).Msg("2FA secret provisioned")
	return models.TwoFactorSetup{SecretKey: secret, ProvisioningURI: uri}, nil
}

func (s *twoFactorService) VerifyAndEnable(ctx context.Context, identity models.Identity, code string) (bool, error) {
	normalized, err := NormalizeTwoFactorCode(code)
	if err != nil {
		return false, err
	}
	if identity.TwoFactorEnabled {
		return false, ErrTwoFactorAlreadyEnabled
	}
	if identity.TwoFactorSecret == "" {
		return false, ErrTwoFactorNotProvisioned
	}

	if !s.otp.Validate(normalized, identity.TwoFactorSecret, s.now()) {
		return false, nil
	}

	if err = s.identities.UpdateTwoFactor(ctx, identity.ID, identity.TwoFactorSecret, true); err != nil {
		return false, fmt.Errorf("enabling 2FA: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("id", identity.ID).Msg("2FA enabled")
	return true, nil
}

// Verify checks code without changing any state. An identity without a
// secret never verifies.
func (s *twoFactorService) Verify(_ context.Context, identity models.Identity, code string) (bool, error) {
	normalized, err := NormalizeTwoFactorCode(code)
	if err != nil {
		return false, err
	}
	if identity.TwoFactorSecret == "" {
		return false, nil
	}
	return s.otp.Validate(normalized, identity.TwoFactorSecret, s.now()), nil
}

// Disable clears both the secret and the flag once a valid code is given.
func (s *twoFactorService) Disable(ctx context.Context, identity models.Identity, code string) (bool, error) {
	normalized, err := NormalizeTwoFactorCode(code)
	if err != nil {
		return false, err
	}
	if !identity.TwoFactorEnabled {
		return false, ErrTwoFactorNotEnabled
	}

	if !s.otp.Validate(normalized, identity.TwoFactorSecret, s.now()) {
		return false, nil
	}

	if err = s.identities.UpdateTwoFactor(ctx, identity.ID, "", false); err != nil {
		return false, fmt.Errorf("disabling 2FA: %w", err)
	}

	logger.FromContext(ctx).Info().Int64("id", identity.ID).Msg("2FA disabled")
	return true, nil
}

func (s *twoFactorService) Status(identity models.Identity) bool {
	return identity.TwoFactorEnabled
}

// NormalizeTwoFactorCode drops spaces and hyphens from code and requires the
// rest to be exactly six ASCII digits.
func NormalizeTwoFactorCode(code string) (string, error) {
	var b strings.Builder
	b.Grow(twoFactorCodeLength)

	for _, r := range code {
		switch {
		case r == ' ' || r == '-':
			continue
		case r < '0' || r > '9':
			return "", ErrTwoFactorCodeFormat
		}
		b.WriteRune(r)
	}

	if b.Len() != twoFactorCodeLength {
		return "", ErrTwoFactorCodeFormat
	}
	return b.String(), nil
}

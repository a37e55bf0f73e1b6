package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-auth-gate/internal/validators"
	"github.com/MKhiriev/go-auth-gate/models"
)

// AuthValidationService rejects malformed login and signup input before it
// reaches the wrapped AuthService.
type AuthValidationService struct {
	inner     AuthService
	validator validators.Validator
}

func NewAuthValidationService() AuthServiceWrapper {
	return &AuthValidationService{
		validator: validators.NewAuthValidator(),
	}
}

func (v *AuthValidationService) Login(ctx context.Context, request models.LoginRequest) (models.LoginResult, error) {
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.Login(ctx, request)
}

func (v *AuthValidationService) CompleteTwoFactorLogin(ctx context.Context, username, code string) (models.LoginResult, error) {
	request := models.TwoFactorLoginRequest{Username: username, Code: code}
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.LoginResult{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.CompleteTwoFactorLogin(ctx, username, code)
}

func (v *AuthValidationService) Register(ctx context.Context, request models.SignupRequest, grantAdmin bool) (models.Identity, error) {
	if err := v.validator.Validate(ctx, request); err != nil {
		return models.Identity{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}
	return v.inner.Register(ctx, request, grantAdmin)
}

func (v *AuthValidationService) GetIdentity(ctx context.Context, username string) (models.Identity, error) {
	return v.inner.GetIdentity(ctx, username)
}

func (v *AuthValidationService) EnsureDefaults(ctx context.Context) error {
	return v.inner.EnsureDefaults(ctx)
}

func (v *AuthValidationService) Wrap(wrapped AuthService) AuthService {
	v.inner = wrapped
	return v
}

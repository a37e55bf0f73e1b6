package validators

import (
	"context"
	"net/mail"
	"regexp"
	"strings"

	"github.com/MKhiriev/go-auth-gate/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldLogin targets the username-or-email field of a login request.
	FieldLogin = "login"

	// FieldUsername targets a username that must satisfy the account naming rules.
	FieldUsername = "username"

	// FieldEmail targets an email address.
	FieldEmail = "email"

	// FieldPassword targets a password on login (presence only).
	FieldPassword = "password"

	// FieldNewPassword targets a password being set (length rules).
	FieldNewPassword = "new_password"

	// FieldCode targets a second-factor code (presence only; format is
	// checked when the code is verified).
	FieldCode = "code"
)

const (
	minPasswordLength = 6
	maxPasswordLength = 40
	maxEmailLength    = 50
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthValidator implements Validator for the request models of the login,
// signup and two-factor endpoints.
type AuthValidator struct {
}

// NewAuthValidator constructs a new AuthValidator and returns it as the
// Validator interface.
func NewAuthValidator() Validator {
	return &AuthValidator{}
}

// Validate dispatches on the dynamic type of obj. Both value and pointer
// forms are accepted.
//
// Supported types:
//   - models.LoginRequest
//   - models.TwoFactorLoginRequest
//   - models.SignupRequest
//   - models.TwoFactorCodeRequest
//
// Returns ErrUnsupportedType for anything else.
func (v *AuthValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.LoginRequest:
		return v.validateLoginRequest(value, fields...)
	case *models.LoginRequest:
		return v.validateLoginRequest(*value, fields...)

	case models.TwoFactorLoginRequest:
		return v.validateTwoFactorLoginRequest(value, fields...)
	case *models.TwoFactorLoginRequest:
		return v.validateTwoFactorLoginRequest(*value, fields...)

	case models.SignupRequest:
		return v.validateSignupRequest(value, fields...)
	case *models.SignupRequest:
		return v.validateSignupRequest(*value, fields...)

	case models.TwoFactorCodeRequest:
		return v.validateCodeRequest(value, fields...)
	case *models.TwoFactorCodeRequest:
		return v.validateCodeRequest(*value, fields...)

	default:
		return ErrUnsupportedType
	}
}

// Default fields: Login, Password.
func (v *AuthValidator) validateLoginRequest(request models.LoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if strings.TrimSpace(request.Username) == "" {
				return ErrEmptyLogin
			}
		case FieldPassword:
			if request.Password == "" {
				return ErrEmptyPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// Default fields: Login, Code.
func (v *AuthValidator) validateTwoFactorLoginRequest(request models.TwoFactorLoginRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldLogin, FieldCode}
	}

	for _, f := range fields {
		switch f {
		case FieldLogin:
			if strings.TrimSpace(request.Username) == "" {
				return ErrEmptyLogin
			}
		case FieldCode:
			if strings.TrimSpace(request.Code) == "" {
				return ErrEmptyCode
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// Default fields: Username, Email, NewPassword.
func (v *AuthValidator) validateSignupRequest(request models.SignupRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldUsername, FieldEmail, FieldNewPassword}
	}

	for _, f := range fields {
		switch f {
		case FieldUsername:
			if !usernamePattern.MatchString(request.Username) {
				return ErrInvalidUsername
			}
		case FieldEmail:
			if !isValidEmail(request.Email) {
				return ErrInvalidEmail
			}
		case FieldNewPassword:
			if n := len(request.Password); n < minPasswordLength || n > maxPasswordLength {
				return ErrInvalidPassword
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// Default fields: Code.
func (v *AuthValidator) validateCodeRequest(request models.TwoFactorCodeRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = []string{FieldCode}
	}

	for _, f := range fields {
		switch f {
		case FieldCode:
			if strings.TrimSpace(request.Code) == "" {
				return ErrEmptyCode
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// isValidEmail accepts a bare addr-spec ("a@b.c"), rejecting display-name
// forms such as "Alice <a@b.c>".
func isValidEmail(email string) bool {
	if email == "" || len(email) > maxEmailLength {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}

	_, domain, _ := strings.Cut(email, "@")
	return strings.Contains(domain, ".")
}

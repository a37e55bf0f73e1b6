package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrEmptyLogin      = errors.New("username or email is required")
	ErrInvalidUsername = errors.New("username must be 3-20 characters of letters, digits or underscore")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrEmptyPassword   = errors.New("password is required")
	ErrInvalidPassword = errors.New("password must be 6-40 characters")
	ErrEmptyCode       = errors.New("verification code is required")
)

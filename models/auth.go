package models

// LoginRequest is the body of POST /api/auth/public/signin.
// Username may hold either a username or an email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TwoFactorLoginRequest completes a login that stopped at the second factor.
type TwoFactorLoginRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

// SignupRequest is the body of POST /api/auth/public/signup.
//
// Role is optional; "user" (the default) and "admin" are the only accepted
// tokens.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// LoginStatus is the outcome kind of a credential check.
type LoginStatus int

const (
	// LoginSucceeded means a token was issued.
	LoginSucceeded LoginStatus = iota
	// LoginTwoFactorRequired means the password was correct but a TOTP code
	// is still needed; no token was issued.
	LoginTwoFactorRequired
)

// String returns a human-readable status name.
func (s LoginStatus) String() string {
	switch s {
	case LoginSucceeded:
		return "success"
	case LoginTwoFactorRequired:
		return "two_factor_required"
	default:
		return "unknown"
	}
}

// LoginResult is returned by the credential authenticator and the federated
// login flow. Token and Identity are only set when Status is LoginSucceeded.
type LoginResult struct {
	Status   LoginStatus
	Username string
	Token    AuthToken
	Identity Identity
}

// LoginResponse is the JSON body returned on login endpoints.
type LoginResponse struct {
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	JWTToken    string   `json:"jwtToken,omitempty"`
	Requires2FA bool     `json:"requires2FA"`
	Message     string   `json:"message,omitempty"`
}

// NewLoginResponse converts a LoginResult into its wire form.
func NewLoginResponse(result LoginResult) LoginResponse {
	if result.Status == LoginTwoFactorRequired {
		return LoginResponse{
			Username:    result.Username,
			Requires2FA: true,
			Message:     "Two-factor authentication required",
		}
	}

	return LoginResponse{
		Username: result.Identity.Username,
		Email:    result.Identity.Email,
		Roles:    result.Token.Roles,
		JWTToken: result.Token.Token,
	}
}

// TwoFactorSetup is returned when a second factor is provisioned.
type TwoFactorSetup struct {
	SecretKey       string `json:"secretKey"`
	ProvisioningURI string `json:"provisioningURI"`
}

// TwoFactorCodeRequest carries a TOTP code for enable, verify and disable.
type TwoFactorCodeRequest struct {
	Code string `json:"code"`
}

// TwoFactorStatus is returned by GET /api/auth/user/2fa-status.
type TwoFactorStatus struct {
	Enabled bool `json:"is2faEnabled"`
}

// MessageResponse is a generic JSON envelope for short status messages.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the JSON body of every non-2xx response except 429.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

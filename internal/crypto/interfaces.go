package crypto

import "time"

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// PasswordHasher hashes and checks account passwords.
type PasswordHasher interface {
	// Hash returns a salted one-way hash of password.
	Hash(password string) (string, error)

	// Compare reports whether password matches hash. An empty hash never
	// matches, but the comparison still costs the same as a real one so that
	// a missing account cannot be told apart from a wrong password by timing.
	Compare(hash, password string) bool
}

// OTPAuthenticator provisions and checks time-based one-time passwords
// (RFC 6238, SHA-1, 6 digits, 30 second step).
type OTPAuthenticator interface {
	// GenerateSecret creates a new base32 shared secret for account and
	// returns it together with an otpauth:// provisioning URI.
	GenerateSecret(account string) (secret, uri string, err error)

	// Validate reports whether code is valid for secret at the given time.
	// One step of clock drift is tolerated in each direction.
	Validate(code, secret string, at time.Time) bool
}

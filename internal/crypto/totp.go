package crypto

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod = 30
	totpSkew   = 1
)

// totpAuthenticator is the pquerna/otp implementation of [OTPAuthenticator].
type totpAuthenticator struct {
	issuer string
}

// NewOTPAuthenticator returns an [OTPAuthenticator] whose provisioning URIs
// carry issuer as the label shown in authenticator apps.
func NewOTPAuthenticator(issuer string) OTPAuthenticator {
	return &totpAuthenticator{issuer: issuer}
}

// GenerateSecret implements [OTPAuthenticator].
func (a *totpAuthenticator) GenerateSecret(account string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.issuer,
		AccountName: account,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", fmt.Errorf("error generating TOTP secret: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// Validate implements [OTPAuthenticator].
func (a *totpAuthenticator) Validate(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, validateOpts())
	return err == nil && ok
}

func validateOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

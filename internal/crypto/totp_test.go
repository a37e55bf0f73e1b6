package crypto

import (
	"net/url"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stepStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func codeAt(t *testing.T, secret string, at time.Time) string {
	t.Helper()
	code, err := totp.GenerateCodeCustom(secret, at, validateOpts())
	require.NoError(t, err)
	return code
}

func TestOTPAuthenticator_GenerateSecret(t *testing.T) {
	a := NewOTPAuthenticator("Notes Application")

	secret, uri, err := a.GenerateSecret("alice")

	require.NoError(t, err)
	assert.Len(t, secret, 32)
	assert.Regexp(t, `^[A-Z2-7]+$`, secret)

	u, err := url.Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "otpauth", u.Scheme)
	assert.Equal(t, "totp", u.Host)
	assert.Equal(t, "/Notes Application:alice", u.Path)
	assert.Equal(t, secret, u.Query().Get("secret"))
	assert.Equal(t, "Notes Application", u.Query().Get("issuer"))
	assert.Equal(t, "6", u.Query().Get("digits"))
	assert.Equal(t, "30", u.Query().Get("period"))
}

func TestOTPAuthenticator_SecretsAreUnique(t *testing.T) {
	a := NewOTPAuthenticator("Notes Application")

	s1, _, err := a.GenerateSecret("alice")
	require.NoError(t, err)
	s2, _, err := a.GenerateSecret("alice")
	require.NoError(t, err)

	assert.NotEqual(t, s1, s2)
}

func TestOTPAuthenticator_Validate(t *testing.T) {
	a := NewOTPAuthenticator("Notes Application")
	secret, _, err := a.GenerateSecret("alice")
	require.NoError(t, err)

	code := codeAt(t, secret, stepStart)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"same step", stepStart.Add(10 * time.Second), true},
		{"one step later", stepStart.Add(30 * time.Second), true},
		{"one step earlier", stepStart.Add(-30 * time.Second), true},
		{"two steps later", stepStart.Add(60 * time.Second), false},
		{"two steps earlier", stepStart.Add(-31 * time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Validate(code, secret, tt.at))
		})
	}
}

func TestOTPAuthenticator_ValidateRejectsGarbage(t *testing.T) {
	a := NewOTPAuthenticator("Notes Application")
	secret, _, err := a.GenerateSecret("alice")
	require.NoError(t, err)

	assert.False(t, a.Validate("12345", secret, stepStart))
	assert.False(t, a.Validate("abcdef", secret, stepStart))
	assert.False(t, a.Validate("123456", "not base32!", stepStart))
}

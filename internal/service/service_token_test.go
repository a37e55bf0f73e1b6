package service

import (
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testNow    = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	testAppCfg = config.App{
		TokenSignKey:  "0123456789abcdef0123456789abcdef",
		TokenIssuer:   "go-auth-gate-test",
		TokenDuration: time.Hour,
		DefaultRole:   "USER",
	}
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testAppCfg)

	token, err := svc.Issue("alice", []string{"USER"}, testNow)
	require.NoError(t, err)
	assert.Equal(t, "alice", token.Subject)
	assert.Equal(t, testNow.Add(time.Hour), token.ExpiresAt)
	assert.NotContains(t, token.Token, "+")
	assert.NotContains(t, token.Token, "/")
	assert.NotContains(t, token.Token, "=")

	claims, err := svc.Verify(token.Token, testNow.Add(59*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"USER"}, claims.Roles)
}

func TestTokenService_Verify_Errors(t *testing.T) {
	svc := NewTokenService(testAppCfg)
	valid, err := svc.Issue("alice", []string{"USER"}, testNow)
	require.NoError(t, err)

	otherKey := testAppCfg
	otherKey.TokenSignKey = "ffffffffffffffffffffffffffffffff"
	foreign, err := NewTokenService(otherKey).Issue("alice", nil, testNow)
	require.NoError(t, err)

	otherIssuer := testAppCfg
	otherIssuer.TokenIssuer = "someone-else"
	wrongIssuer, err := NewTokenService(otherIssuer).Issue("alice", nil, testNow)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    testAppCfg.TokenIssuer,
		ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr error
	}{
		{name: "expired exactly at exp", token: valid.Token, now: testNow.Add(time.Hour), wantErr: ErrTokenExpired},
		{name: "expired later", token: valid.Token, now: testNow.Add(2 * time.Hour), wantErr: ErrTokenExpired},
		{name: "foreign key", token: foreign.Token, now: testNow, wantErr: ErrTokenSignatureInvalid},
		{name: "foreign key past expiry", token: foreign.Token, now: testNow.Add(2 * time.Hour), wantErr: ErrTokenSignatureInvalid},
		{name: "alg none", token: unsigned, now: testNow, wantErr: ErrTokenSignatureInvalid},
		{name: "wrong issuer", token: wrongIssuer.Token, now: testNow, wantErr: ErrTokenMalformed},
		{name: "garbage", token: "not-a-token", now: testNow, wantErr: ErrTokenMalformed},
		{name: "empty", token: "", now: testNow, wantErr: ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token, tt.now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTokenService_Verify_IsPure(t *testing.T) {
	svc := NewTokenService(testAppCfg)
	token, err := svc.Issue("alice", []string{"ADMIN"}, testNow)
	require.NoError(t, err)

	first, err := svc.Verify(token.Token, testNow)
	require.NoError(t, err)
	second, err := svc.Verify(token.Token, testNow)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/mock"
	"github.com/MKhiriev/go-auth-gate/internal/store"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func newTestTwoFactorSvc(t *testing.T) (*twoFactorService, *store.MemoryStore, *mock.MockOTPAuthenticator, models.Identity) {
	t.Helper()
	ctrl := gomock.NewController(t)

	st := store.NewMemoryStore()
	otp := mock.NewMockOTPAuthenticator(ctrl)

	identity, err := st.Create(context.Background(), models.Identity{
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []string{models.RoleUser},
		Enabled:  true,
	})
	require.NoError(t, err)

	svc := NewTwoFactorService(st, otp, logger.Nop()).(*twoFactorService)
	svc.now = func() time.Time { return testNow }

	return svc, st, otp, identity
}

func reload(t *testing.T, st *store.MemoryStore, username string) models.Identity {
	t.Helper()
	identity, err := st.FindByUsername(context.Background(), username)
	require.NoError(t, err)
	return identity
}

// ── NormalizeTwoFactorCode ───────────────────────────────────────────────────

func TestNormalizeTwoFactorCode(t *testing.T) {
	tests := []struct {
		code    string
		want    string
		wantErr bool
	}{
		{code: "123456", want: "123456"},
		{code: "123 456", want: "123456"},
		{code: "123-456", want: "123456"},
		{code: " 12 34 56 ", want: "123456"},
		{code: "12345", wantErr: true},
		{code: "1234567", wantErr: true},
		{code: "12345a", wantErr: true},
		{code: "123.456", wantErr: true},
		{code: "１２３４５６", wantErr: true},
		{code: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := NormalizeTwoFactorCode(tt.code)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTwoFactorCodeFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ── Provision ────────────────────────────────────────────────────────────────

func TestTwoFactorService_Provision(t *testing.T) {
	svc, st, otp, identity := newTestTwoFactorSvc(t)
	otp.EXPECT().GenerateSecret("alice").Return(testSecret, "otpauth://totp/x", nil)

	setup, err := svc.Provision(context.Background(), identity)

	require.NoError(t, err)
	assert.Equal(t, models.TwoFactorSetup{SecretKey: testSecret, ProvisioningURI: "otpauth://totp/x"}, setup)

	stored := reload(t, st, identity.Username)
	assert.Equal(t, testSecret, stored.TwoFactorSecret)
	assert.False(t, stored.TwoFactorEnabled, "secret stays pending until verified")
}

func TestTwoFactorService_Provision_AlreadyEnabled(t *testing.T) {
	svc, _, _, identity := newTestTwoFactorSvc(t)
	identity.TwoFactorEnabled = true
	identity.TwoFactorSecret = testSecret

	_, err := svc.Provision(context.Background(), identity)

	assert.ErrorIs(t, err, ErrTwoFactorAlreadyEnabled)
}

func TestTwoFactorService_Provision_GeneratorError(t *testing.T) {
	svc, _, otp, identity := newTestTwoFactorSvc(t)
	genErr := errors.New("entropy exhausted")
	otp.EXPECT().GenerateSecret("alice").Return("", "", genErr)

	_, err := svc.Provision(context.Background(), identity)

	assert.ErrorIs(t, err, genErr)
}

// ── VerifyAndEnable ──────────────────────────────────────────────────────────

func TestTwoFactorService_VerifyAndEnable(t *testing.T) {
	svc, st, otp, identity := newTestTwoFactorSvc(t)
	require.NoError(t, st.UpdateTwoFactor(context.Background(), identity.ID, testSecret, false))
	pending := reload(t, st, identity.Username)

	otp.EXPECT().Validate("000000", testSecret, testNow).Return(false)
	ok, err := svc.VerifyAndEnable(context.Background(), pending, "000 000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, reload(t, st, identity.Username).TwoFactorEnabled)

	otp.EXPECT().Validate("123456", testSecret, testNow).Return(true)
	ok, err = svc.VerifyAndEnable(context.Background(), pending, "123-456")
	require.NoError(t, err)
	assert.True(t, ok)

	enabled := reload(t, st, identity.Username)
	assert.True(t, enabled.TwoFactorEnabled)
	assert.Equal(t, testSecret, enabled.TwoFactorSecret)
}

func TestTwoFactorService_VerifyAndEnable_Errors(t *testing.T) {
	svc, _, _, identity := newTestTwoFactorSvc(t)

	// no Validate expectation: a rejected format must never reach the verifier
	_, err := svc.VerifyAndEnable(context.Background(), identity, "12ab56")
	assert.ErrorIs(t, err, ErrTwoFactorCodeFormat)

	_, err = svc.VerifyAndEnable(context.Background(), identity, "123456")
	assert.ErrorIs(t, err, ErrTwoFactorNotProvisioned)

	identity.TwoFactorSecret = testSecret
	identity.TwoFactorEnabled = true
	_, err = svc.VerifyAndEnable(context.Background(), identity, "123456")
	assert.ErrorIs(t, err, ErrTwoFactorAlreadyEnabled)
}

// ── Verify ───────────────────────────────────────────────────────────────────

func TestTwoFactorService_Verify_DoesNotMutate(t *testing.T) {
	svc, st, otp, identity := newTestTwoFactorSvc(t)
	require.NoError(t, st.UpdateTwoFactor(context.Background(), identity.ID, testSecret, true))
	enabled := reload(t, st, identity.Username)
	before := enabled.UpdatedAt

	otp.EXPECT().Validate("123456", testSecret, testNow).Return(true)

	ok, err := svc.Verify(context.Background(), enabled, "123456")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, before, reload(t, st, identity.Username).UpdatedAt)
}

func TestTwoFactorService_Verify_NoSecret(t *testing.T) {
	svc, _, _, identity := newTestTwoFactorSvc(t)

	ok, err := svc.Verify(context.Background(), identity, "123456")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTwoFactorService_Verify_BadFormat(t *testing.T) {
	svc, _, _, identity := newTestTwoFactorSvc(t)
	identity.TwoFactorSecret = testSecret

	_, err := svc.Verify(context.Background(), identity, "1234567")

	assert.ErrorIs(t, err, ErrTwoFactorCodeFormat)
}

// ── Disable ──────────────────────────────────────────────────────────────────

func TestTwoFactorService_Disable(t *testing.T) {
	svc, st, otp, identity := newTestTwoFactorSvc(t)
	require.NoError(t, st.UpdateTwoFactor(context.Background(), identity.ID, testSecret, true))
	enabled := reload(t, st, identity.Username)

	otp.EXPECT().Validate("999999", testSecret, testNow).Return(false)
	ok, err := svc.Disable(context.Background(), enabled, "999999")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, reload(t, st, identity.Username).TwoFactorEnabled)

	otp.EXPECT().Validate("123456", testSecret, testNow).Return(true)
	ok, err = svc.Disable(context.Background(), enabled, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	disabled := reload(t, st, identity.Username)
	assert.False(t, disabled.TwoFactorEnabled)
	assert.Empty(t, disabled.TwoFactorSecret)
	assert.False(t, svc.Status(disabled))
}

func TestTwoFactorService_Disable_NotEnabled(t *testing.T) {
	svc, _, _, identity := newTestTwoFactorSvc(t)

	_, err := svc.Disable(context.Background(), identity, "123456")

	assert.ErrorIs(t, err, ErrTwoFactorNotEnabled)
}

func TestTwoFactorService_Disable_StoreError(t *testing.T) {
	ctrl := gomock.NewController(t)
	identities := mock.NewMockIdentityRepository(ctrl)
	otp := mock.NewMockOTPAuthenticator(ctrl)
	svc := NewTwoFactorService(identities, otp, logger.Nop())

	identity := models.Identity{ID: 7, TwoFactorEnabled: true, TwoFactorSecret: testSecret}
	otp.EXPECT().Validate("123456", testSecret, gomock.Any()).Return(true)
	identities.EXPECT().UpdateTwoFactor(gomock.Any(), int64(7), "", false).Return(store.ErrIdentityNotFound)

	ok, err := svc.Disable(context.Background(), identity, "123456")

	assert.False(t, ok)
	assert.ErrorIs(t, err, store.ErrIdentityNotFound)
}

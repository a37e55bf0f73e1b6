package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_CanAuthenticate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		identity Identity
		want     bool
	}{
		{name: "enabled without expiry", identity: Identity{Enabled: true}, want: true},
		{name: "disabled", identity: Identity{}, want: false},
		{name: "locked", identity: Identity{Enabled: true, Locked: true}, want: false},
		{
			name:     "account expires later",
			identity: Identity{Enabled: true, AccountExpiry: now.Add(time.Second)},
			want:     true,
		},
		{
			name:     "account expires now",
			identity: Identity{Enabled: true, AccountExpiry: now},
			want:     false,
		},
		{
			name:     "credentials expired",
			identity: Identity{Enabled: true, CredentialsExpiry: now.Add(-time.Hour)},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.identity.CanAuthenticate(now))
		})
	}
}

func TestIdentity_PrincipalCopiesRoles(t *testing.T) {
	identity := Identity{ID: 7, Username: "alice", Roles: []string{RoleUser}}

	p := identity.Principal()
	p.Roles[0] = RoleAdmin

	assert.Equal(t, []string{RoleUser}, identity.Roles)
	assert.Equal(t, int64(7), p.ID)
	assert.False(t, identity.IsAdmin())
}

func TestTierForRoles(t *testing.T) {
	assert.Equal(t, TierAuthenticated, TierForRoles(nil))
	assert.Equal(t, TierAuthenticated, TierForRoles([]string{RoleUser}))
	assert.Equal(t, TierAdmin, TierForRoles([]string{RoleUser, RoleAdmin}))
	assert.Equal(t, "admin", TierAdmin.String())
	assert.Equal(t, "unknown", Tier(42).String())
}

func TestNewLoginResponse(t *testing.T) {
	t.Run("two factor pending", func(t *testing.T) {
		resp := NewLoginResponse(LoginResult{Status: LoginTwoFactorRequired, Username: "alice"})

		assert.True(t, resp.Requires2FA)
		assert.Equal(t, "alice", resp.Username)
		assert.Empty(t, resp.JWTToken)
	})

	t.Run("success", func(t *testing.T) {
		resp := NewLoginResponse(LoginResult{
			Status:   LoginSucceeded,
			Token:    AuthToken{Token: "t", Roles: []string{RoleUser}},
			Identity: Identity{Username: "alice", Email: "alice@example.com"},
		})

		assert.False(t, resp.Requires2FA)
		assert.Equal(t, "t", resp.JWTToken)
		assert.Equal(t, "alice@example.com", resp.Email)
		assert.Equal(t, []string{RoleUser}, resp.Roles)
	})
}

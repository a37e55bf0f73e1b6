package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
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

func newTestResolver(t *testing.T, identities store.IdentityRepository) *identityResolver {
	t.Helper()
	r := NewIdentityResolver(identities, testAppCfg, logger.Nop()).(*identityResolver)
	r.now = func() time.Time { return testNow }
	return r
}

func createUser(t *testing.T, st *store.MemoryStore, username, email string) models.Identity {
	t.Helper()
	identity, err := st.Create(context.Background(), models.Identity{
		Username: username,
		Email:    email,
		Roles:    []string{models.RoleUser},
		Enabled:  true,
	})
	require.NoError(t, err)
	return identity
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

func TestClaimEmail(t *testing.T) {
	tests := []struct {
		name  string
		claim models.ExternalIdentityClaim
		want  string
	}{
		{name: "asserted", claim: models.ExternalIdentityClaim{Provider: "github", Login: "octo", Email: "o@x.io"}, want: "o@x.io"},
		{name: "login fallback", claim: models.ExternalIdentityClaim{Provider: "github", Login: "octo"}, want: "octo@github.com"},
		{name: "subject fallback", claim: models.ExternalIdentityClaim{Provider: "google", Subject: "1098"}, want: "1098@google.com"},
		{name: "nothing", claim: models.ExternalIdentityClaim{Provider: "google"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, claimEmail(tt.claim))
		})
	}
}

func TestCandidateUsername(t *testing.T) {
	tests := []struct {
		name  string
		claim models.ExternalIdentityClaim
		email string
		want  string
	}{
		{name: "provider login", claim: models.ExternalIdentityClaim{Login: "Octo-Cat"}, email: "x@y.z", want: "octocat"},
		{name: "email local part", claim: models.ExternalIdentityClaim{Name: "Alice"}, email: "alice.smith@example.com", want: "alicesmith"},
		{name: "display name", claim: models.ExternalIdentityClaim{Name: "Bob Builder"}, email: "---@example.com", want: "bobbuilder"},
		// 2026-03-01T12:00:00Z is 1772366400000 ms
		{name: "timestamp", claim: models.ExternalIdentityClaim{}, email: "@example.com", want: "user0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, candidateUsername(tt.claim, tt.email, testNow))
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice_Smith", "alicesmith"},
		{"ab", "userab"},
		{"", "user"},
		{"Ωx", "userx"},
		{"averyveryverylongusername123", "averyveryverylonguse"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := sanitizeUsername(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), maxUsernameLength)
		})
	}
}

// ---------------------------------------------------------------------------
// Resolve
// ---------------------------------------------------------------------------

func TestIdentityResolver_Resolve_ExistingByEmail(t *testing.T) {
	st := store.NewMemoryStore()
	existing := createUser(t, st, "alice", "alice@example.com")
	r := newTestResolver(t, st)

	got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "google",
		Subject:  "1",
		Email:    "ALICE@example.com",
		Login:    "someone-else",
	})

	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Equal(t, "alice", got.Username, "username mismatch is ignored")
}

func TestIdentityResolver_Resolve_CreatesIdentity(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestResolver(t, st)

	got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "github",
		Subject:  "42",
		Login:    "octocat",
	})

	require.NoError(t, err)
	assert.Equal(t, "octocat", got.Username)
	assert.Equal(t, "octocat@github.com", got.Email)
	assert.Empty(t, got.PasswordHash)
	assert.Equal(t, []string{models.RoleUser}, got.Roles)
	assert.True(t, got.Enabled)
	assert.False(t, got.TwoFactorEnabled)
	assert.Equal(t, "github", got.SignUpMethod)
	assert.Equal(t, testNow.Add(10*365*24*time.Hour), got.AccountExpiry)
	assert.Equal(t, testNow.Add(10*365*24*time.Hour), got.CredentialsExpiry)
}

func TestIdentityResolver_Resolve_UsernameCollisions(t *testing.T) {
	st := store.NewMemoryStore()
	createUser(t, st, "octocat", "a@example.com")
	createUser(t, st, "octocat1", "b@example.com")
	r := newTestResolver(t, st)

	got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "github", Subject: "42", Login: "octocat", Email: "octo@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "octocat2", got.Username)
}

func TestIdentityResolver_Resolve_CollisionTruncatesBase(t *testing.T) {
	st := store.NewMemoryStore()
	base := "abcdefghijklmnopqrst" // 20 chars
	createUser(t, st, base, "a@example.com")
	r := newTestResolver(t, st)

	got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "github", Subject: "42", Login: base, Email: "new@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "abcdefghijklmnopqrs1", got.Username)
}

func TestIdentityResolver_Resolve_SuffixesExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	identities := mock.NewMockIdentityRepository(ctrl)
	r := newTestResolver(t, identities)

	identities.EXPECT().FindByEmail(gomock.Any(), "octo@example.com").Return(models.Identity{}, store.ErrIdentityNotFound)
	identities.EXPECT().ExistsByUsername(gomock.Any(), gomock.Any()).Return(true, nil).Times(1 + maxUsernameSuffix)
	identities.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, identity models.Identity) (models.Identity, error) {
			identity.ID = 1
			return identity, nil
		})

	got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "github", Login: "octocatwithalongname", Email: "octo@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "octocatwit"+timestampSuffix(testNow), got.Username)
}

func TestIdentityResolver_Resolve_LostEmailRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	identities := mock.NewMockIdentityRepository(ctrl)
	r := newTestResolver(t, identities)

	winner := models.Identity{ID: 9, Username: "octocat", Email: "octo@example.com"}

	gomock.InOrder(
		identities.EXPECT().FindByEmail(gomock.Any(), "octo@example.com").Return(models.Identity{}, store.ErrIdentityNotFound),
		identities.EXPECT().ExistsByUsername(gomock.Any(), "octocat").Return(false, nil),
		identities.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Identity{}, store.ErrEmailAlreadyExists),
		identities.EXPECT().FindByEmail(gomock.Any(), "octo@example.com").Return(winner, nil),
	)

	got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "github", Login: "octocat", Email: "octo@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, winner, got)
}

func TestIdentityResolver_Resolve_LostUsernameRaceTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	identities := mock.NewMockIdentityRepository(ctrl)
	r := newTestResolver(t, identities)

	identities.EXPECT().FindByEmail(gomock.Any(), gomock.Any()).Return(models.Identity{}, store.ErrIdentityNotFound)
	identities.EXPECT().ExistsByUsername(gomock.Any(), "octocat").Return(false, nil).Times(2)
	identities.EXPECT().Create(gomock.Any(), gomock.Any()).Return(models.Identity{}, store.ErrUsernameAlreadyExists).Times(2)

	_, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "github", Login: "octocat", Email: "octo@example.com",
	})

	assert.ErrorIs(t, err, ErrAccountConflict)
}

func TestIdentityResolver_Resolve_MissingDefaultRole(t *testing.T) {
	st := store.NewMemoryStore(models.RoleAdmin)
	r := newTestResolver(t, st)

	_, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
		Provider: "google", Subject: "1", Email: "alice@example.com",
	})

	assert.ErrorIs(t, err, ErrConfigurationMissing)
}

func TestIdentityResolver_Resolve_NoEmailNoLogin(t *testing.T) {
	r := newTestResolver(t, store.NewMemoryStore())

	_, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{Provider: "google"})

	assert.ErrorIs(t, err, ErrFederatedLoginFailed)
}

func TestIdentityResolver_Resolve_ConcurrentSameEmail(t *testing.T) {
	st := store.NewMemoryStore()
	r := newTestResolver(t, st)

	const callbacks = 16

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		ids   = make(map[int64]struct{})
		start = make(chan struct{})
	)

	for i := range callbacks {
		wg.Go(func() {
			<-start
			got, err := r.Resolve(context.Background(), models.ExternalIdentityClaim{
				Provider: "github",
				Login:    fmt.Sprintf("octo%d", i),
				Email:    "octo@example.com",
			})
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			ids[got.ID] = struct{}{}
			mu.Unlock()
		})
	}

	close(start)
	wg.Wait()

	assert.Len(t, ids, 1, "all callbacks must resolve to one identity")
	_, err := st.FindByEmail(context.Background(), strings.ToUpper("octo@example.com"))
	assert.NoError(t, err)
}

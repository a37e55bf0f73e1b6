package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/mock"
	"github.com/MKhiriev/go-auth-gate/internal/ratelimit"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ─────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	alice = models.Identity{
		ID:       1,
		Username: "alice",
		Email:    "alice@example.com",
		Roles:    []string{models.RoleUser},
		Enabled:  true,
	}
	root = models.Identity{
		ID:       2,
		Username: "root",
		Email:    "root@example.com",
		Roles:    []string{models.RoleUser, models.RoleAdmin},
		Enabled:  true,
	}
)

// newTestHandler returns a Handler with a nop logger and no services, for
// middleware tests that never reach them.
func newTestHandler() *Handler {
	return NewHandler(&service.Services{}, nil, models.NewAppBuildInfo("", "", ""), config.Server{}, config.OAuth{}, logger.Nop())
}

type handlerFixture struct {
	handler   *Handler
	limiter   *ratelimit.Limiter
	tokens    *mock.MockTokenService
	auth      *mock.MockAuthService
	twoFactor *mock.MockTwoFactorService
	federated *mock.MockFederatedLoginService
}

// quietRateLimit never runs out during a test. The refill is slow enough
// that token counts stay exact.
func quietRateLimit() config.RateLimit {
	return config.RateLimit{
		Anonymous:      config.Tier{Requests: 1, Burst: 1000},
		Authenticated:  config.Tier{Requests: 1, Burst: 1000},
		Admin:          config.Tier{Requests: 1, Burst: 1000},
		RefillInterval: time.Minute,
	}
}

func newHandlerFixture(t *testing.T, rateLimit config.RateLimit) *handlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &handlerFixture{
		limiter:   ratelimit.NewLimiter(rateLimit, logger.Nop()),
		tokens:    mock.NewMockTokenService(ctrl),
		auth:      mock.NewMockAuthService(ctrl),
		twoFactor: mock.NewMockTwoFactorService(ctrl),
		federated: mock.NewMockFederatedLoginService(ctrl),
	}

	services := &service.Services{
		TokenService:          f.tokens,
		AuthService:           f.auth,
		TwoFactorService:      f.twoFactor,
		FederatedLoginService: f.federated,
	}

	serverCfg := config.Default().Server
	oauthCfg := config.OAuth{FrontendRedirectURL: "http://localhost:3000/oauth2/redirect"}

	f.handler = NewHandler(services, f.limiter, models.NewAppBuildInfo("v1.2.3", "2026-03-01", "abc123"), serverCfg, oauthCfg, logger.Nop())
	f.handler.now = func() time.Time { return testNow }
	return f
}

// signedIn makes "Bearer <token>" resolve to identity on every request.
func (f *handlerFixture) signedIn(token string, identity models.Identity) {
	claims := models.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: identity.Username},
		Roles:            identity.Roles,
	}
	f.tokens.EXPECT().Verify(token, testNow).Return(claims, nil).AnyTimes()
	f.auth.EXPECT().GetIdentity(gomock.Any(), identity.Username).Return(identity, nil).AnyTimes()
}

// do sends a request through the full router.
func (f *handlerFixture) do(method, target, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.handler.Init().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func requireStatus(t *testing.T, want int, rec *httptest.ResponseRecorder) {
	t.Helper()
	require.Equal(t, want, rec.Code, rec.Body.String())
}

func wrapInvalid(err error) error {
	return fmt.Errorf("%w: %w", service.ErrInvalidDataProvided, err)
}

package config

import "time"

// Endpoint class names used as keys of RateLimit.Endpoints.
const (
	EndpointLogin            = "/api/auth/login"
	EndpointRegister         = "/api/auth/register"
	EndpointRefresh          = "/api/auth/refresh"
	EndpointTwoFactor        = "/api/auth/2fa"
	EndpointNotes            = "/api/notes"
	EndpointNotesSearch      = "/api/notes/search"
	EndpointNotesFavorites   = "/api/notes/favorites"
	EndpointNotesStats       = "/api/notes/stats"
	EndpointActivitiesRecent = "/api/activities/recent"
	EndpointAdmin            = "/api/admin/**"
	EndpointOAuth            = "/oauth2"
)

// Default returns the configuration the server starts from before env,
// flags and JSON are applied.
func Default() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:   "go-auth-gate",
			TokenDuration: 24 * time.Hour,
			DefaultRole:   "USER",
			LogLevel:      "debug",
		},
		Server: Server{
			HTTPAddress:     "localhost:8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			SkipPaths: []string{
				"/health",
				"/favicon.ico",
				"/static/",
				"/css/",
				"/js/",
				"/images/",
				"/swagger-ui/",
				"/v3/api-docs",
			},
		},
		RateLimit: RateLimit{
			Anonymous:      Tier{Requests: 60, Burst: 10},
			Authenticated:  Tier{Requests: 120, Burst: 20},
			Admin:          Tier{Requests: 500, Burst: 50},
			RefillInterval: time.Minute,
			Endpoints: map[string]int{
				EndpointLogin:            10,
				EndpointRegister:         5,
				EndpointRefresh:          20,
				EndpointTwoFactor:        10,
				EndpointNotes:            100,
				EndpointNotesSearch:      60,
				EndpointNotesFavorites:   30,
				EndpointNotesStats:       30,
				EndpointActivitiesRecent: 30,
				EndpointAdmin:            100,
				EndpointOAuth:            20,
			},
			IdleTTL:    time.Hour,
			MaxBuckets: 10000,
		},
		TwoFactor: TwoFactor{
			Issuer: "Notes Application",
		},
		OAuth: OAuth{
			Google: OAuthProvider{Scopes: []string{"openid", "email", "profile"}},
			GitHub: OAuthProvider{Scopes: []string{"read:user", "user:email"}},

			CallbackBaseURL:     "http://localhost:8080",
			FrontendRedirectURL: "http://localhost:3000/oauth2/redirect",
			StateTTL:            10 * time.Minute,
			RequestTimeout:      10 * time.Second,
		},
		Workers: Workers{
			RateLimitSweepInterval: time.Minute,
		},
	}
}

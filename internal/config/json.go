package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type jsonTier struct {
	Requests int `json:"requests"`
	Burst    int `json:"burst"`
}

type jsonOAuthProvider struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	Scopes       []string `json:"scopes"`
}

// StructuredJSONConfig mirrors [StructuredConfig] in the on-disk JSON layout.
type StructuredJSONConfig struct {
	App struct {
		TokenSignKey  string   `json:"token_sign_key"`
		TokenIssuer   string   `json:"token_issuer"`
		TokenDuration Duration `json:"token_duration"`
		DefaultRole   string   `json:"default_role"`
		AdminUsername string   `json:"admin_username"`
		AdminEmail    string   `json:"admin_email"`
		AdminPassword string   `json:"admin_password"`
		LogLevel      string   `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN    string `json:"dsn"`
			Driver string `json:"driver"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress       string   `json:"http_address"`
		RequestTimeout    Duration `json:"request_timeout"`
		ShutdownTimeout   Duration `json:"shutdown_timeout"`
		SkipPaths         []string `json:"skip_paths"`
		TrustProxyHeaders bool     `json:"trust_proxy_headers"`
	} `json:"server,omitempty"`

	RateLimit struct {
		Anonymous      jsonTier       `json:"anonymous"`
		Authenticated  jsonTier       `json:"authenticated"`
		Admin          jsonTier       `json:"admin"`
		RefillInterval Duration       `json:"refill_interval"`
		Endpoints      map[string]int `json:"endpoints"`
		IdleTTL        Duration       `json:"idle_ttl"`
		MaxBuckets     int            `json:"max_buckets"`
	} `json:"rate_limit,omitempty"`

	TwoFactor struct {
		Issuer string `json:"issuer"`
	} `json:"two_factor,omitempty"`

	OAuth struct {
		Google              jsonOAuthProvider `json:"google"`
		GitHub              jsonOAuthProvider `json:"github"`
		CallbackBaseURL     string            `json:"callback_base_url"`
		FrontendRedirectURL string            `json:"frontend_redirect_url"`
		StateTTL            Duration          `json:"state_ttl"`
		RequestTimeout      Duration          `json:"request_timeout"`
	} `json:"oauth,omitempty"`

	Workers struct {
		RateLimitSweepInterval Duration `json:"rate_limit_sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:  jsonCfg.App.TokenSignKey,
			TokenIssuer:   jsonCfg.App.TokenIssuer,
			TokenDuration: time.Duration(jsonCfg.App.TokenDuration),
			DefaultRole:   jsonCfg.App.DefaultRole,
			AdminUsername: jsonCfg.App.AdminUsername,
			AdminEmail:    jsonCfg.App.AdminEmail,
			AdminPassword: jsonCfg.App.AdminPassword,
			LogLevel:      jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			DB: DB{
				DSN:    jsonCfg.Storage.DB.DSN,
				Driver: jsonCfg.Storage.DB.Driver,
			},
		},
		Server: Server{
			HTTPAddress:       jsonCfg.Server.HTTPAddress,
			RequestTimeout:    time.Duration(jsonCfg.Server.RequestTimeout),
			ShutdownTimeout:   time.Duration(jsonCfg.Server.ShutdownTimeout),
			SkipPaths:         jsonCfg.Server.SkipPaths,
			TrustProxyHeaders: jsonCfg.Server.TrustProxyHeaders,
		},
		RateLimit: RateLimit{
			Anonymous:      Tier(jsonCfg.RateLimit.Anonymous),
			Authenticated:  Tier(jsonCfg.RateLimit.Authenticated),
			Admin:          Tier(jsonCfg.RateLimit.Admin),
			RefillInterval: time.Duration(jsonCfg.RateLimit.RefillInterval),
			Endpoints:      jsonCfg.RateLimit.Endpoints,
			IdleTTL:        time.Duration(jsonCfg.RateLimit.IdleTTL),
			MaxBuckets:     jsonCfg.RateLimit.MaxBuckets,
		},
		TwoFactor: TwoFactor{
			Issuer: jsonCfg.TwoFactor.Issuer,
		},
		OAuth: OAuth{
			Google:              OAuthProvider(jsonCfg.OAuth.Google),
			GitHub:              OAuthProvider(jsonCfg.OAuth.GitHub),
			CallbackBaseURL:     jsonCfg.OAuth.CallbackBaseURL,
			FrontendRedirectURL: jsonCfg.OAuth.FrontendRedirectURL,
			StateTTL:            time.Duration(jsonCfg.OAuth.StateTTL),
			RequestTimeout:      time.Duration(jsonCfg.OAuth.RequestTimeout),
		},
		Workers: Workers{
			RateLimitSweepInterval: time.Duration(jsonCfg.Workers.RateLimitSweepInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

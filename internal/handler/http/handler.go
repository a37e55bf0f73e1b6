package http

import (
	"time"

	"github.com/MKhiriev/go-auth-gate/internal/config"
	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
	"github.com/MKhiriev/go-auth-gate/models"
)

type Handler struct {
	services  *service.Services
	limiter   RateLimiter
	buildInfo models.AppBuildInfo

	skipPaths           []string
	trustProxyHeaders   bool
	requestTimeout      time.Duration
	frontendRedirectURL string

	ids    *utils.UUIDGenerator
	now    func() time.Time
	logger *logger.Logger
}

func NewHandler(
	services *service.Services,
	limiter RateLimiter,
	buildInfo models.AppBuildInfo,
	serverCfg config.Server,
	oauthCfg config.OAuth,
	logger *logger.Logger,
) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:            services,
		limiter:             limiter,
		buildInfo:           buildInfo,
		skipPaths:           serverCfg.SkipPaths,
		trustProxyHeaders:   serverCfg.TrustProxyHeaders,
		requestTimeout:      serverCfg.RequestTimeout,
		frontendRedirectURL: oauthCfg.FrontendRedirectURL,
		ids:                 utils.NewUUIDGenerator(),
		now:                 time.Now,
		logger:              logger,
	}
}

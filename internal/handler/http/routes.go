package http

import (
	"github.com/MKhiriev/go-auth-gate/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, h.gate)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	router.Get("/health", h.health)

	router.Route("/api/auth", func(r chi.Router) {
		// routes without authorization
		r.Route("/public", func(r chi.Router) {
			r.Post("/signin", h.signin)
			r.Post("/signin-2fa", h.signinTwoFactor)
			r.Post("/signup", h.signup)
			r.Get("/oauth2/providers", h.federatedProviders)
			r.Post("/oauth2/verify-2fa", h.federatedVerifyTwoFactor)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Get("/user", h.currentUser)
			r.Get("/username", h.currentUsername)
			r.Get("/user/2fa-status", h.twoFactorStatus)
			r.Post("/enable-2fa", h.enableTwoFactor)
			r.Post("/verify-2fa", h.verifyTwoFactor)
			r.Post("/disable-2fa", h.disableTwoFactor)
		})
	})

	router.Get("/oauth2/authorization/{provider}", h.federatedAuthorize)
	router.Get("/login/oauth2/code/{provider}", h.federatedCallback)

	router.Route("/api/admin", func(r chi.Router) {
		r.Use(h.requireAuth, h.requireRole(models.RoleAdmin))
		r.Get("/rate-limit/status/*", h.rateLimitStatus)
		r.Get("/rate-limit/remaining/*", h.rateLimitRemaining)
		r.Delete("/rate-limit/reset/*", h.rateLimitReset)
	})

	return router
}

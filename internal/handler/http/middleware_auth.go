package http

import (
	"net/http"

	"github.com/MKhiriev/go-auth-gate/internal/utils"
)

// requireAuth rejects requests the gate did not attach a principal to
// with 401.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.PrincipalFromContext(r.Context()); !ok {
			writeError(w, r, ErrAuthenticationRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireRole rejects principals without role with 403. It must run after
// requireAuth.
func (h *Handler) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := utils.PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, r, ErrAuthenticationRequired)
				return
			}
			if !principal.HasRole(role) {
				writeError(w, r, ErrAccessDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-auth-gate/internal/logger"
	"github.com/MKhiriev/go-auth-gate/internal/service"
	"github.com/MKhiriev/go-auth-gate/internal/utils"
)

var errorStatusMap = map[error]int{
	service.ErrInvalidDataProvided: http.StatusBadRequest,
	ErrInvalidJSON:                 http.StatusBadRequest,

	service.ErrBadCredentials:        http.StatusUnauthorized,
	service.ErrIdentityNotFound:      http.StatusUnauthorized,
	service.ErrTokenMalformed:        http.StatusUnauthorized,
	service.ErrTokenSignatureInvalid: http.StatusUnauthorized,
	service.ErrTokenExpired:          http.StatusUnauthorized,
	service.ErrTwoFactorInvalid:      http.StatusUnauthorized,
	ErrAuthenticationRequired:        http.StatusUnauthorized,

	service.ErrTwoFactorCodeFormat:     http.StatusBadRequest,
	service.ErrTwoFactorNotEnabled:     http.StatusBadRequest,
	service.ErrTwoFactorAlreadyEnabled: http.StatusBadRequest,
	service.ErrTwoFactorNotProvisioned: http.StatusBadRequest,

	service.ErrUnknownRole:      http.StatusBadRequest,
	service.ErrAccountConflict:  http.StatusBadRequest,
	service.ErrRoleNotPermitted: http.StatusForbidden,
	ErrAccessDenied:             http.StatusForbidden,

	service.ErrUnknownProvider:      http.StatusBadRequest,
	service.ErrInvalidOAuthState:    http.StatusBadRequest,
	service.ErrFederatedLoginFailed: http.StatusUnauthorized,

	ErrBucketNotFound: http.StatusNotFound,

	service.ErrTokenCreationFailed:  http.StatusInternalServerError,
	service.ErrConfigurationMissing: http.StatusInternalServerError,
}

// detailedErrors are reported with their whole chain; the wrapped causes
// are validation or conflict details meant for the caller.
var detailedErrors = []error{
	service.ErrInvalidDataProvided,
	service.ErrAccountConflict,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageFromError returns the text sent to the client. Known errors are
// reported by their sentinel only, unknown ones by the status text.
func messageFromError(err error) string {
	for _, target := range detailedErrors {
		if errors.Is(err, target) {
			return err.Error()
		}
	}
	for target := range errorStatusMap {
		if errors.Is(err, target) {
			if statusFromError(target) == http.StatusInternalServerError {
				break
			}
			return target.Error()
		}
	}
	return http.StatusText(http.StatusInternalServerError)
}

// writeError maps err to a status and writes a models.ErrorResponse.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)
	status := statusFromError(err)

	if status >= http.StatusInternalServerError {
		log.Err(err).Msg("request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	utils.WriteError(w, status, messageFromError(err))
}

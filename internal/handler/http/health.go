package http

import (
	"net/http"

	"github.com/MKhiriev/go-auth-gate/internal/utils"
)

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	_, _ = utils.WriteJSON(w, h.buildInfo.Health(), http.StatusOK)
}

package reconciler

import (
	"net/http"

	"github.com/haushalt/haushalt/internal/rest"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Process godoc
// @Summary Run a reconciliation pass for the current profile
// @Tags Schedule
// @Success 204
// @Router /api/schedule/process [post]
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ProcessSchedules(r.Context()); err != nil {
		rest.WriteError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

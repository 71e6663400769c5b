package handler

import (
	"net/http"

	"go.uber.org/zap"

	"trustvest-backend/internal/service"
)

// StatusHandler handles the health and connectivity endpoints.
type StatusHandler struct {
	status *service.StatusService
	logger *zap.Logger
}

func NewStatusHandler(status *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		status: status,
		logger: logger,
	}
}

// Health handles GET /.
func (h *StatusHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.status.Health(r.Context()))
}

// Status handles GET /status.
func (h *StatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.status.Status(r.Context()))
}

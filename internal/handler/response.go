package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"trustvest-backend/internal/service"
	"trustvest-backend/internal/util"
)

// errorBody is the uniform error envelope. Every non-2xx response carries a
// single detail string.
type errorBody struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", util.ErrorField(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, statusCode int, err error) {
	logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
	)
	respondJSON(w, logger, statusCode, errorBody{Detail: err.Error()})
}

// statusCode maps service errors onto HTTP status codes. Conflicts map to 400
// rather than 409; clients treat both duplicate checks and validation failures
// uniformly.
func statusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrStoreUnavailable), errors.Is(err, service.ErrBlobStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"trustvest-backend/internal/service"
)

func TestStatusCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidInput, http.StatusBadRequest},
		{service.ErrConflict, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrRateLimited, http.StatusTooManyRequests},
		{service.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{service.ErrBlobStoreUnavailable, http.StatusServiceUnavailable},
		{service.ErrProviderNotConfigured, http.StatusInternalServerError},
		{service.ErrUpstream, http.StatusInternalServerError},
		{service.ErrUploadFailed, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := statusCode(tc.err); got != tc.want {
			t.Errorf("statusCode(%v): got %d want %d", tc.err, got, tc.want)
		}
	}

	// Wrapped sentinels must map the same as bare ones.
	wrapped := fmt.Errorf("%w: email already registered", service.ErrConflict)
	if got := statusCode(wrapped); got != http.StatusBadRequest {
		t.Errorf("wrapped conflict: got %d want %d", got, http.StatusBadRequest)
	}
}

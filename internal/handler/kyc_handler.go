package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"trustvest-backend/internal/service"
	"trustvest-backend/internal/util"
)

// maxPhotoSize caps multipart photo uploads at 10 MiB.
const maxPhotoSize = 10 << 20

// KYCHandler handles the photo upload and form submission endpoints.
type KYCHandler struct {
	kyc    *service.KYCService
	logger *zap.Logger
}

func NewKYCHandler(kyc *service.KYCService, logger *zap.Logger) *KYCHandler {
	return &KYCHandler{
		kyc:    kyc,
		logger: logger,
	}
}

type uploadPhotoResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type submitResponse struct {
	Message     string `json:"message"`
	KYCVerified bool   `json:"kycVerified"`
}

// UploadPhoto handles POST /kyc/upload-photo. The request is multipart form
// data with a "file" part and a "user_id" field; the photo is buffered fully
// before the store write.
func (h *KYCHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid multipart form"))
		return
	}

	userID := r.FormValue("user_id")

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("file is required"))
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("failed to read file"))
		return
	}

	url, key, err := h.kyc.UploadPhoto(ctx, userID, body, header.Header.Get("Content-Type"))
	if err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, uploadPhotoResponse{URL: url, Key: key})
	h.logger.Info("KYC photo uploaded via HTTP",
		util.String("user_id", userID),
		util.String("key", key),
		util.Int("size_bytes", len(body)),
		util.Duration("duration", time.Since(startTime)),
	)
}

// Submit handles POST /kyc/submit.
func (h *KYCHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.kyc.Submit(ctx, &req); err != nil {
		respondError(w, h.logger, statusCode(err), err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, submitResponse{
		Message:     "KYC submitted successfully",
		KYCVerified: true,
	})
}

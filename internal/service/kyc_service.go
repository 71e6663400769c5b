package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trustvest-backend/internal/audit"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/repository/mongodb"
	redisrepo "trustvest-backend/internal/repository/redis"
	"trustvest-backend/internal/util"
)

// Upload content types accepted for KYC photos.
var allowedPhotoTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// BlobStore is the object-store port for KYC photos.
type BlobStore interface {
	// Upload stores body verbatim under key with the given content type.
	Upload(ctx context.Context, key string, body []byte, contentType string) error
	// URL returns the deterministic public URL for a key.
	URL(key string) string
}

// KYCService orchestrates photo uploads and KYC submissions. Upload and
// submit are not transactionally linked: a client that uploads and never
// submits leaves an orphaned blob, which this design accepts.
type KYCService struct {
	repo     mongodb.UserRepository
	blob     BlobStore
	profiles *redisrepo.ProfileCache
	audit    *audit.Recorder
	logger   *zap.Logger
}

// SubmitRequest carries a KYC submission. Consent is accepted and recorded
// but not enforced as a precondition.
type SubmitRequest struct {
	UserID   string  `json:"user_id"`
	FullName string  `json:"fullName"`
	Dob      string  `json:"dob"`
	Pan      string  `json:"pan"`
	Consent  bool    `json:"consent"`
	PhotoURL *string `json:"photoUrl"`
}

func NewKYCService(
	repo mongodb.UserRepository,
	blob BlobStore,
	profiles *redisrepo.ProfileCache,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *KYCService {
	return &KYCService{
		repo:     repo,
		blob:     blob,
		profiles: profiles,
		audit:    recorder,
		logger:   logger,
	}
}

// UploadPhoto buffers and stores a KYC photo, returning its public URL and
// storage key.
func (s *KYCService) UploadPhoto(ctx context.Context, userID string, body []byte, contentType string) (url, key string, err error) {
	if s.blob == nil {
		return "", "", ErrBlobStoreUnavailable
	}
	if userID == "" {
		return "", "", fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if !allowedPhotoTypes[contentType] {
		return "", "", fmt.Errorf("%w: invalid file type, allowed: image/jpeg, image/jpg, image/png, image/webp", ErrInvalidInput)
	}

	key = photoKey(userID, contentType)

	if err := s.blob.Upload(ctx, key, body, contentType); err != nil {
		s.logger.Error("KYC photo upload failed",
			util.String("user_id", userID),
			util.String("key", key),
			zap.Error(err),
		)
		return "", "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return s.blob.URL(key), key, nil
}

// photoKey builds a collision-resistant storage key scoped under the user.
func photoKey(userID, contentType string) string {
	ext := "jpg"
	switch contentType {
	case "image/png":
		ext = "png"
	case "image/webp":
		ext = "webp"
	}

	id := uuid.New()
	return fmt.Sprintf("kyc/%s/%s.%s", userID, hex.EncodeToString(id[:]), ext)
}

// Submit marks the user KYC-verified and records the submitted fields. This
// is the only path that sets kycVerified.
func (s *KYCService) Submit(ctx context.Context, req *SubmitRequest) error {
	if s.repo == nil {
		return ErrStoreUnavailable
	}
	if req.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}

	update := mongodb.KYCUpdate{
		FullName:    req.FullName,
		Dob:         req.Dob,
		Pan:         req.Pan,
		PhotoURL:    req.PhotoURL,
		SubmittedAt: time.Now().UTC(),
	}

	if err := s.repo.ApplyKYC(ctx, req.UserID, update); err != nil {
		if errors.Is(err, mongodb.ErrNotFound) || errors.Is(err, mongodb.ErrInvalidID) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to apply KYC update: %w", err)
	}

	s.profiles.Invalidate(ctx, req.UserID)
	s.audit.Record(models.AuthEvent{
		EventType: models.EventKYCSubmitted,
		UserID:    req.UserID,
		Details:   fmt.Sprintf("consent=%t", req.Consent),
	})

	s.logger.Info("KYC submitted", util.String("user_id", req.UserID))

	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"trustvest-backend/internal/audit"
	"trustvest-backend/internal/hashing"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/repository/mongodb"
	redisrepo "trustvest-backend/internal/repository/redis"
	"trustvest-backend/internal/util"
)

// AccountService handles registration, login and profile retrieval.
type AccountService struct {
	repo     mongodb.UserRepository
	hasher   *hashing.Hasher
	profiles *redisrepo.ProfileCache
	limiter  *redisrepo.RateLimitCache
	audit    *audit.Recorder
	logger   *zap.Logger
}

// RegisterRequest carries a registration payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest carries a login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NewAccountService(
	repo mongodb.UserRepository,
	hasher *hashing.Hasher,
	profiles *redisrepo.ProfileCache,
	limiter *redisrepo.RateLimitCache,
	recorder *audit.Recorder,
	logger *zap.Logger,
) *AccountService {
	return &AccountService{
		repo:     repo,
		hasher:   hasher,
		profiles: profiles,
		limiter:  limiter,
		audit:    recorder,
		logger:   logger,
	}
}

// Register creates a new account with default profile fields. Email and
// username are unique case-insensitively: both are lowercased before the
// duplicate pre-check, and the store's unique indexes close the race between
// concurrent registrations.
func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*models.UserProfile, error) {
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	existing, err := s.repo.FindByEmailOrUsername(ctx, email, username)
	if err != nil && !errors.Is(err, mongodb.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		if existing.Email == email {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("%w: username already taken", ErrConflict)
	}

	passwordHash, err := s.hasher.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   passwordHash,
		Name:           req.Username, // display name defaults to the username as typed
		KYCVerified:    false,
		RiskScore:      models.DefaultRiskScore,
		WalletBalance:  models.DefaultWalletBalance,
		EmotionalScore: models.DefaultEmotionalScore,
		BehaviorTags:   models.DefaultBehaviorTags(),
		CreatedAt:      time.Now().UTC(),
		LastLogin:      nil,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, mongodb.ErrDuplicate) {
			// Lost the race against a concurrent registration.
			return nil, fmt.Errorf("%w: username or email already exists", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile := user.Profile()
	s.profiles.Set(ctx, profile)
	s.audit.Record(models.AuthEvent{
		EventType: models.EventUserRegistered,
		UserID:    profile.ID,
		Email:     email,
	})

	s.logger.Info("user registered",
		util.String("user_id", profile.ID),
		util.String("username", username),
	)

	return profile, nil
}

// Login authenticates by email and password. A wrong password and an unknown
// email produce the same error so callers cannot tell which it was.
func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*models.UserProfile, error) {
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.limiter.TooManyFailures(ctx, email) {
		return nil, ErrRateLimited
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongodb.ErrNotFound) {
			s.recordLoginFailure(ctx, email)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		s.recordLoginFailure(ctx, email)
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID.Hex(), now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	s.limiter.Reset(ctx, email)

	profile := user.Profile()
	s.profiles.Invalidate(ctx, profile.ID)
	s.profiles.Set(ctx, profile)
	s.audit.Record(models.AuthEvent{
		EventType: models.EventLoginSucceeded,
		UserID:    profile.ID,
		Email:     email,
	})

	s.logger.Info("user logged in", util.String("user_id", profile.ID))

	return profile, nil
}

// GetProfile returns the outward profile view for an id.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	if s.repo == nil {
		return nil, ErrStoreUnavailable
	}

	if cached := s.profiles.Get(ctx, userID); cached != nil {
		return cached, nil
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		switch {
		case errors.Is(err, mongodb.ErrInvalidID):
			return nil, fmt.Errorf("%w: invalid user ID", ErrInvalidInput)
		case errors.Is(err, mongodb.ErrNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
	}

	profile := user.Profile()
	s.profiles.Set(ctx, profile)
	return profile, nil
}

func (s *AccountService) recordLoginFailure(ctx context.Context, email string) {
	s.limiter.RecordFailure(ctx, email)
	s.audit.Record(models.AuthEvent{
		EventType: models.EventLoginFailed,
		Email:     email,
	})
}

func validateRegisterRequest(req *RegisterRequest) error {
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fmt.Errorf("%w: username, email and password are required", ErrInvalidInput)
	}
	if !strings.Contains(req.Email, "@") {
		return fmt.Errorf("%w: invalid email address", ErrInvalidInput)
	}
	if util.ContainsSuspicious(req.Username) {
		return fmt.Errorf("%w: username contains invalid characters", ErrInvalidInput)
	}
	return nil
}

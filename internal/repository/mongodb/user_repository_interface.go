package mongodb

import (
	"context"
	"time"

	"trustvest-backend/internal/models"
)

// KYCUpdate carries the fields written by a KYC submission.
type KYCUpdate struct {
	FullName    string
	Dob         string
	Pan         string
	PhotoURL    *string
	SubmittedAt time.Time
}

// UserRepository is the credential-store port. Services depend on this
// interface so tests can substitute an in-memory implementation.
type UserRepository interface {
	// CreateUser inserts a new record. A uniqueness violation on email or
	// username surfaces as ErrDuplicate.
	CreateUser(ctx context.Context, user *models.User) error

	// FindByEmail looks a user up by lowercased email. ErrNotFound when absent.
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByEmailOrUsername returns any record matching either value,
	// used for the pre-insert duplicate check.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)

	// FindByID resolves an id string. ErrInvalidID when malformed,
	// ErrNotFound when absent.
	FindByID(ctx context.Context, id string) (*models.User, error)

	// UpdateLastLogin stamps the login time.
	UpdateLastLogin(ctx context.Context, id string, t time.Time) error

	// ApplyKYC marks the user verified and records the submitted fields.
	// ErrNotFound when the id matches no record.
	ApplyKYC(ctx context.Context, id string, update KYCUpdate) error

	HealthCheck(ctx context.Context) error
}

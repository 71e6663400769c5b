package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"trustvest-backend/internal/client"
	"trustvest-backend/internal/encryption"
	"trustvest-backend/internal/models"
	"trustvest-backend/internal/util"
)

var (
	ErrNotFound  = errors.New("user record not found")
	ErrDuplicate = errors.New("email or username already exists")
	ErrInvalidID = errors.New("invalid user id")
)

// MongoUserRepository implements UserRepository against the users collection.
// It owns two cross-cutting concerns so call sites stay clean: substituting
// profile defaults for records created before a field existed, and sealing
// the KYC PAN before it reaches the store.
type MongoUserRepository struct {
	client     *client.MongoClient
	encryption *encryption.Manager
}

func NewUserRepository(mc *client.MongoClient, enc *encryption.Manager) *MongoUserRepository {
	return &MongoUserRepository{
		client:     mc,
		encryption: enc,
	}
}

func (r *MongoUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	result, err := r.client.Users().InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}

	return nil
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}})
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.client.Users().FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	r.applyDefaults(&user)

	if user.KYCPanEnc != nil {
		pan, err := r.encryption.Open(ctx, user.KYCPanEnc)
		if err != nil {
			// The profile view never carries the PAN, so a decrypt
			// failure degrades the record instead of failing the read.
			util.Warn("failed to decrypt KYC PAN",
				zap.String("user_id", user.ID.Hex()),
				zap.Error(err),
			)
		} else {
			user.KYCPan = pan
		}
	}

	return &user, nil
}

// applyDefaults fills profile fields that predate the current schema.
// Declared once here so no call site re-implements field-missing handling.
func (r *MongoUserRepository) applyDefaults(u *models.User) {
	if u.Name == "" {
		u.Name = u.Username
	}
	if u.RiskScore == 0 {
		u.RiskScore = models.DefaultRiskScore
	}
	if u.WalletBalance == 0 {
		u.WalletBalance = models.DefaultWalletBalance
	}
	if u.EmotionalScore == 0 {
		u.EmotionalScore = models.DefaultEmotionalScore
	}
	if len(u.BehaviorTags) == 0 {
		u.BehaviorTags = models.DefaultBehaviorTags()
	}
}

func (r *MongoUserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	result, err := r.client.Users().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{"lastLogin": t},
	})
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) ApplyKYC(ctx context.Context, id string, update KYCUpdate) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	sealed, err := r.encryption.Seal(ctx, update.Pan)
	if err != nil {
		return fmt.Errorf("failed to seal PAN: %w", err)
	}

	result, err := r.client.Users().UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"name":           update.FullName,
			"kycVerified":    true,
			"kycPhotoUrl":    update.PhotoURL,
			"kycSubmittedAt": update.SubmittedAt,
			"kycDob":         update.Dob,
			"kycPanEnc":      sealed,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to apply KYC update: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

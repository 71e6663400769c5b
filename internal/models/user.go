package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile defaults applied to records created before a field existed.
const (
	DefaultRiskScore      = 10
	DefaultWalletBalance  = 1000.0
	DefaultEmotionalScore = 80
)

// DefaultBehaviorTags returns the tags assigned at registration. A fresh
// slice each call so callers can't mutate a shared backing array.
func DefaultBehaviorTags() []string {
	return []string{"New Investor"}
}

// User is the persisted account record. PasswordHash never leaves this
// process: it carries no json tag that would expose it and every outward
// response goes through Profile().
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username       string             `bson:"username" json:"-"`
	Email          string             `bson:"email" json:"-"`
	PasswordHash   string             `bson:"password_hash" json:"-"`
	Name           string             `bson:"name" json:"-"`
	KYCVerified    bool               `bson:"kycVerified" json:"-"`
	RiskScore      int                `bson:"riskScore" json:"-"`
	WalletBalance  float64            `bson:"walletBalance" json:"-"`
	EmotionalScore int                `bson:"emotionalScore" json:"-"`
	BehaviorTags   []string           `bson:"behaviorTags" json:"-"`
	CreatedAt      time.Time          `bson:"createdAt" json:"-"`
	LastLogin      *time.Time         `bson:"lastLogin" json:"-"`

	// KYC extension fields, present only after a KYC submission.
	KYCPhotoURL    *string       `bson:"kycPhotoUrl,omitempty" json:"-"`
	KYCSubmittedAt *time.Time    `bson:"kycSubmittedAt,omitempty" json:"-"`
	KYCDob         string        `bson:"kycDob,omitempty" json:"-"`
	KYCPan         string        `bson:"-" json:"-"`
	KYCPanEnc      *SealedSecret `bson:"kycPanEnc,omitempty" json:"-"`
}

// SealedSecret is an envelope-encrypted field as stored at rest.
type SealedSecret struct {
	Ciphertext   string    `bson:"ciphertext" json:"-"`
	EncryptedDEK string    `bson:"encrypted_dek" json:"-"`
	KeyID        string    `bson:"key_id" json:"-"`
	Version      string    `bson:"version" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"-"`
}

// UserProfile is the outward-facing view of a user.
type UserProfile struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Email          string   `json:"email"`
	Name           string   `json:"name"`
	KYCVerified    bool     `json:"kycVerified"`
	RiskScore      int      `json:"riskScore"`
	WalletBalance  float64  `json:"walletBalance"`
	EmotionalScore int      `json:"emotionalScore"`
	BehaviorTags   []string `json:"behaviorTags"`
}

// Profile builds the outward view, stripping credentials and KYC documents.
func (u *User) Profile() *UserProfile {
	return &UserProfile{
		ID:             u.ID.Hex(),
		Username:       u.Username,
		Email:          u.Email,
		Name:           u.Name,
		KYCVerified:    u.KYCVerified,
		RiskScore:      u.RiskScore,
		WalletBalance:  u.WalletBalance,
		EmotionalScore: u.EmotionalScore,
		BehaviorTags:   u.BehaviorTags,
	}
}

package models

import "time"

// Auth event types recorded for audit.
const (
	EventUserRegistered = "user_registered"
	EventLoginSucceeded = "login_succeeded"
	EventLoginFailed    = "login_failed"
	EventKYCSubmitted   = "kyc_submitted"
)

// AuthEvent is an audit record emitted on account activity. It is published
// to Kafka and mirrored into ClickHouse when those sinks are configured.
type AuthEvent struct {
	EventTime time.Time `json:"event_time"`
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Details   string    `json:"details,omitempty"`
}

package service

import "errors"

// Sentinel errors forming the service-level failure taxonomy. The HTTP layer
// owns the mapping to status codes; services only wrap these with context.
var (
	// ErrInvalidInput covers malformed or missing request fields and
	// unsupported upload content types.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict is a uniqueness violation on email or username.
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials hides whether the email or the password was
	// wrong, to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound means an id resolved to no record.
	ErrUserNotFound = errors.New("user not found")

	// ErrRateLimited signals too many failed login attempts.
	ErrRateLimited = errors.New("too many failed login attempts")

	// ErrStoreUnavailable means the credential store is not configured or
	// unreachable; the feature degrades instead of crashing the process.
	ErrStoreUnavailable = errors.New("database not available")

	// ErrBlobStoreUnavailable means S3 is not configured.
	ErrBlobStoreUnavailable = errors.New("S3 not configured. Set AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_S3_BUCKET, and optionally AWS_REGION")

	// ErrUploadFailed is a store-level failure while writing a photo.
	ErrUploadFailed = errors.New("failed to upload photo")

	// ErrProviderNotConfigured means no LLM API key is present. No network
	// call is made in this state.
	ErrProviderNotConfigured = errors.New("API key not configured")

	// ErrUpstream carries a provider-level failure; the provider's own
	// message text is preserved for the caller.
	ErrUpstream = errors.New("upstream provider error")
)

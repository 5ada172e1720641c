package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/accountd/accountd/models"
)

// Sentinel errors returned by the authentication service. Handlers match them
// with [errors.Is] to select an HTTP status; the taxonomy is the complete
// boundary between business failures and transport concerns.
var (
	// ErrDuplicateIdentity is returned when a registration or profile update
	// collides with an existing username or email address.
	ErrDuplicateIdentity = errors.New("username or email already taken")

	// ErrNotFound is returned when no account matches the given identity.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidCredentials is returned on a password mismatch, at login and
	// at password change.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoChanges is returned when a profile update carries no fields.
	ErrNoChanges = errors.New("no changes requested")

	// ErrRegistrationDisabled is returned when self-registration is switched
	// off in the configuration.
	ErrRegistrationDisabled = errors.New("registration is disabled")

	// ErrSessionInvalid is returned when a session token has no live session
	// behind it.
	ErrSessionInvalid = errors.New("session is invalid")

	// ErrSessionExpired is returned when a session exists but its lifetime
	// has elapsed.
	ErrSessionExpired = errors.New("session is expired")

	// ErrStorage wraps any unexpected persistence failure. The original
	// error is logged server-side and never reaches the client.
	ErrStorage = errors.New("storage error")
)

// FieldViolation describes a single failed validation rule on one input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violation found in a request, so a client can
// surface all problems at once instead of fixing them one round-trip at a time.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AccountLockedError is returned while an account lockout is in force.
// RetryAfter is the remaining wait, rounded up to whole seconds.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	seconds := int(e.RetryAfter.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("account is locked, try again in %d seconds", seconds)
}

// AccountNotActiveError is returned when an account exists and the password
// may even be correct, but its status forbids authentication.
type AccountNotActiveError struct {
	Status models.UserStatus
}

func (e *AccountNotActiveError) Error() string {
	return fmt.Sprintf("account is not active (status: %s)", e.Status)
}

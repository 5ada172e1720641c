package models

import "time"

// Audit action tags written to the activity log.
const (
	ActionUserRegistered  = "user_registered"
	ActionUserLogin       = "user_login"
	ActionUserLogout      = "user_logout"
	ActionAccountLocked   = "account_locked"
	ActionPasswordChanged = "password_changed"
	ActionProfileUpdated  = "profile_updated"
)

// ActivityEvent is an append-only audit record of a security-relevant action.
// Once written it is never mutated or deleted. UserID is a weak reference:
// the row survives the referenced user (ON DELETE SET NULL).
type ActivityEvent struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	IPAddress   string    `json:"ip_address,omitempty"`
	UserAgent   string    `json:"user_agent,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the ActivityEvent model.
func (e ActivityEvent) TableName() string {
	return "activity_log"
}

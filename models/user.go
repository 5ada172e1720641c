package models

import "time"

// UserRole enumerates the authorization roles an account can hold.
type UserRole string

// UserStatus enumerates the lifecycle states of an account.
type UserStatus string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

const (
	StatusActive   UserStatus = "active"
	StatusInactive UserStatus = "inactive"
	StatusBanned   UserStatus = "banned"
)

// User is the identity record persisted in the users table.
// Username and email are unique across all accounts; uniqueness is enforced
// by database constraints, never by an application-level pre-check.
type User struct {
	// ID is the internal unique identifier of the user.
	// Assigned by the database and immutable afterwards.
	ID int64 `json:"id"`

	// Username is the unique login name, at least 3 characters.
	Username string `json:"username"`

	// Email is the unique, case-normalised email address.
	Email string `json:"email"`

	// PasswordHash is the bcrypt digest of the user's password.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	// FullName is the optional display name.
	FullName string `json:"full_name"`

	// Role controls authorization decisions (user or admin).
	Role UserRole `json:"role"`

	// Status is the account lifecycle state. Only active accounts may log in.
	Status UserStatus `json:"status"`

	// LoginAttempts counts consecutive failed password verifications.
	// Reset to zero on every successful login.
	LoginAttempts int `json:"-"`

	// LockoutUntil, when set and in the future, blocks authentication
	// regardless of credential correctness. Expiry is evaluated lazily at
	// login time; there is no background sweep.
	LockoutUntil *time.Time `json:"-"`

	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanAuthenticate reports whether the account lifecycle state permits login.
func (u User) CanAuthenticate() bool {
	return u.Status == StatusActive
}

// UserPage is one page of the admin user listing together with
// pagination metadata.
type UserPage struct {
	Users      []User `json:"users"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

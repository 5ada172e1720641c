package models

// RegisterRequest carries the fields required to create a new account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	// FullName is optional.
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	// Identity is either the username or the email address;
	// both are accepted for lookup.
	Identity string `json:"identity"`
	Password string `json:"password"`
}

// ChangePasswordRequest carries an authenticated password change.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ProfileUpdate represents a partial profile update.
// Only non-nil fields will be updated. The struct is the complete
// allow-list of mutable profile attributes: role, status and credential
// fields are not representable here and therefore cannot be changed
// through a profile update.
type ProfileUpdate struct {
	// FullName sets a new display name. If nil, the field is not updated.
	FullName *string `json:"full_name,omitempty"`

	// Email sets a new email address. If nil, the field is not updated.
	Email *string `json:"email,omitempty"`
}

// Empty reports whether the update carries no allow-listed field at all.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.Email == nil
}

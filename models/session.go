package models

import "time"

// Session is the ephemeral proof of a successful authentication.
// It is owned by exactly one user and lives in the session store for a
// fixed lifetime from creation; there is no sliding renewal. Destroyed on
// logout or expiry.
type Session struct {
	// Token is the opaque bearer credential returned to the client.
	// 32 bytes of cryptographically secure randomness, hex-encoded.
	Token string `json:"token"`

	// UserID is the owning user's identifier.
	UserID int64 `json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Origin metadata captured at login time.
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// Expired reports whether the session is past its expiry at the given instant.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Origin carries request origin metadata supplied by the transport layer.
// The core never derives these values itself.
type Origin struct {
	IPAddress string
	UserAgent string
}

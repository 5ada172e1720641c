// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, and other common operations.
package utils

import (
	"context"

	"github.com/accountd/accountd/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// CurrentUserCtxKey is the key used to store the authenticated user in the
// context. Set by the authentication middleware after session validation.
var CurrentUserCtxKey = contextKey("currentUser")

// SessionTokenCtxKey is the key used to store the presented session token in
// the context. Set alongside [CurrentUserCtxKey] so handlers that act on the
// session itself (logout) do not need to re-extract the token.
var SessionTokenCtxKey = contextKey("sessionToken")

// WithCurrentUser returns a context carrying the authenticated user and the
// session token that proved their identity.
func WithCurrentUser(ctx context.Context, user models.User, token string) context.Context {
	ctx = context.WithValue(ctx, CurrentUserCtxKey, user)
	return context.WithValue(ctx, SessionTokenCtxKey, token)
}

// GetCurrentUserFromContext retrieves the authenticated user from the context.
//
// Returns the user and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
func GetCurrentUserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(CurrentUserCtxKey).(models.User)
	return user, ok
}

// GetSessionTokenFromContext retrieves the presented session token from the
// context.
func GetSessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(SessionTokenCtxKey).(string)
	return token, ok
}

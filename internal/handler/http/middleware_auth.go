package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/service"
	"github.com/accountd/accountd/internal/utils"
)

// requireLogin is an HTTP middleware that enforces session authentication.
//
// It extracts the session token (cookie first, then the "Authorization"
// header), validates it via [service.SessionManager.Validate], and on
// success stores the authenticated user and the token in the request
// context before delegating to the next handler.
//
// The middleware rejects requests with HTTP 401 Unauthorized when:
//   - No token is present ([ErrNoSessionToken], [ErrEmptyToken]).
//   - The "Authorization" header is malformed ([ErrInvalidAuthorizationHeader]).
//   - The session is invalid or expired ([service.ErrSessionInvalid],
//     [service.ErrSessionExpired]).
//
// All rejection events are logged using the context-scoped logger obtained
// via [logger.FromRequest].
func (h *Handler) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		token, err := sessionTokenFromRequest(r)
		if err != nil {
			log.Err(err).Send()
			_, _ = utils.WriteJSON(w, errorResponse{Error: err.Error()}, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := h.services.SessionManager.Validate(ctx, token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSessionExpired):
				log.Err(err).Msg("session expired")
				_, _ = utils.WriteJSON(w, errorResponse{Error: service.ErrSessionExpired.Error()}, http.StatusUnauthorized)
				return
			case errors.Is(err, service.ErrSessionInvalid):
				log.Err(err).Msg("session invalid")
				_, _ = utils.WriteJSON(w, errorResponse{Error: service.ErrSessionInvalid.Error()}, http.StatusUnauthorized)
				return
			default:
				log.Err(err).Msg("error occurred during session validation")
				_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
				return
			}
		}

		// Store the authenticated user and the presented token so downstream
		// handlers do not re-validate the session.
		ctx = utils.WithCurrentUser(ctx, user, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin gates a route to administrators. It runs on top of
// [Handler.requireLogin], so an unauthenticated request is rejected with 401
// before the role is ever examined; an authenticated non-admin gets 403.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return h.requireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		user, ok := utils.GetCurrentUserFromContext(r.Context())
		if !ok {
			log.Error().Msg("no authenticated user in context after requireLogin")
			_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
			return
		}

		if !user.IsAdmin() {
			log.Warn().Int64("user_id", user.ID).Msg("non-admin attempted to access admin route")
			_, _ = utils.WriteJSON(w, errorResponse{Error: "admin access required"}, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	}))
}

// sessionTokenFromRequest extracts the session token from the request.
//
// The session cookie takes precedence; API clients without cookies may send
// the same token in the standard format:
//
//	Authorization: Bearer <token>
//
// It returns the following sentinel errors:
//   - [ErrNoSessionToken] when neither transport carries a token.
//   - [ErrInvalidAuthorizationHeader] when the header has fewer than two
//     space-separated parts.
//   - [ErrEmptyToken] when the token value is an empty string.
func sessionTokenFromRequest(r *http.Request) (string, error) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if cookie.Value == "" {
			return "", ErrEmptyToken
		}
		return cookie.Value, nil
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrNoSessionToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) < 2 {
		return "", ErrInvalidAuthorizationHeader
	}

	token := parts[1]
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

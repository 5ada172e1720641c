package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/utils"
	"github.com/accountd/accountd/models"
)

// register handles POST /api/auth/register.
//
// Decodes a [models.RegisterRequest], delegates to the auth service and
// returns the created account as JSON with 201. Validation failures come
// back as 422 with the full violation list, duplicate identities as 409.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		_, _ = utils.WriteJSON(w, errorResponse{Error: "Invalid JSON was passed"}, http.StatusBadRequest)
		return
	}

	user, err := h.services.AuthService.Register(ctx, req, originFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Debug().Int64("id", user.ID).Str("username", user.Username).Msg("user successfully registered")

	_, _ = utils.WriteJSON(w, user, http.StatusCreated)
}

// login handles POST /api/auth/login.
//
// Decodes a [models.LoginRequest], authenticates and, on success, sets the
// session cookie and returns the session as JSON. The same token doubles as
// a bearer credential for cookie-less clients.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		_, _ = utils.WriteJSON(w, errorResponse{Error: "Invalid JSON was passed"}, http.StatusBadRequest)
		return
	}

	session, err := h.services.AuthService.Login(ctx, req, originFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	log.Debug().Int64("user_id", session.UserID).Msg("user successfully logged in")

	http.SetCookie(w, sessionCookie(session.Token, session.ExpiresAt))
	_, _ = utils.WriteJSON(w, session, http.StatusOK)
}

// logout handles POST /api/auth/logout.
//
// Destroys the presented session and expires the cookie. Logging out an
// already-dead session still succeeds.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	token, ok := utils.GetSessionTokenFromContext(ctx)
	if !ok {
		log.Error().Msg("no session token in context after requireLogin")
		_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
		return
	}

	if err := h.services.AuthService.Logout(ctx, token, originFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, expiredSessionCookie())
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me and returns the authenticated user.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	user, ok := utils.GetCurrentUserFromContext(r.Context())
	if !ok {
		log.Error().Msg("no authenticated user in context after requireLogin")
		_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
		return
	}

	_, _ = utils.WriteJSON(w, user, http.StatusOK)
}

// changePassword handles POST /api/auth/password.
func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetCurrentUserFromContext(ctx)
	if !ok {
		log.Error().Msg("no authenticated user in context after requireLogin")
		_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
		return
	}

	var req models.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		_, _ = utils.WriteJSON(w, errorResponse{Error: "Invalid JSON was passed"}, http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.ChangePassword(ctx, user.ID, req, originFromRequest(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// updateProfile handles PATCH /api/auth/profile.
//
// The request body is a [models.ProfileUpdate]; absent fields stay untouched.
// Returns the refreshed user as JSON.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	user, ok := utils.GetCurrentUserFromContext(ctx)
	if !ok {
		log.Error().Msg("no authenticated user in context after requireLogin")
		_, _ = utils.WriteJSON(w, errorResponse{Error: http.StatusText(http.StatusInternalServerError)}, http.StatusInternalServerError)
		return
	}

	var update models.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		_, _ = utils.WriteJSON(w, errorResponse{Error: "Invalid JSON was passed"}, http.StatusBadRequest)
		return
	}

	updated, err := h.services.AuthService.UpdateProfile(ctx, user.ID, update, originFromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_, _ = utils.WriteJSON(w, updated, http.StatusOK)
}

// sessionCookie builds the HttpOnly session cookie set at login.
func sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// expiredSessionCookie builds the cookie that clears the session at logout.
func expiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

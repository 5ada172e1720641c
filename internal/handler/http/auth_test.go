package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/service"
	"github.com/accountd/accountd/internal/utils"
	"github.com/accountd/accountd/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Mock AuthService
// ─────────────────────────────────────────────

// mockAuthService implements service.AuthService for unit tests.
// Each method field can be overridden per test case.
type mockAuthService struct {
	registerFn       func(ctx context.Context, req models.RegisterRequest, origin models.Origin) (models.User, error)
	loginFn          func(ctx context.Context, req models.LoginRequest, origin models.Origin) (models.Session, error)
	logoutFn         func(ctx context.Context, token string, origin models.Origin) error
	changePasswordFn func(ctx context.Context, userID int64, req models.ChangePasswordRequest, origin models.Origin) error
	updateProfileFn  func(ctx context.Context, userID int64, update models.ProfileUpdate, origin models.Origin) (models.User, error)
	getCurrentUserFn func(ctx context.Context, token string) (models.User, error)
	listUsersFn      func(ctx context.Context, page, pageSize int) (models.UserPage, error)
	recentActivityFn func(ctx context.Context, limit int) ([]models.ActivityEvent, error)
}

func (m *mockAuthService) Register(ctx context.Context, req models.RegisterRequest, origin models.Origin) (models.User, error) {
	return m.registerFn(ctx, req, origin)
}

func (m *mockAuthService) Login(ctx context.Context, req models.LoginRequest, origin models.Origin) (models.Session, error) {
	return m.loginFn(ctx, req, origin)
}

func (m *mockAuthService) Logout(ctx context.Context, token string, origin models.Origin) error {
	return m.logoutFn(ctx, token, origin)
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest, origin models.Origin) error {
	return m.changePasswordFn(ctx, userID, req, origin)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate, origin models.Origin) (models.User, error) {
	return m.updateProfileFn(ctx, userID, update, origin)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, token string) (models.User, error) {
	return m.getCurrentUserFn(ctx, token)
}

func (m *mockAuthService) ListUsers(ctx context.Context, page, pageSize int) (models.UserPage, error) {
	return m.listUsersFn(ctx, page, pageSize)
}

func (m *mockAuthService) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	return m.recentActivityFn(ctx, limit)
}

// mockSessionManager implements service.SessionManager for unit tests.
type mockSessionManager struct {
	createFn   func(ctx context.Context, user models.User, origin models.Origin) (models.Session, error)
	validateFn func(ctx context.Context, token string) (models.User, error)
	destroyFn  func(ctx context.Context, token string) error
}

func (m *mockSessionManager) Create(ctx context.Context, user models.User, origin models.Origin) (models.Session, error) {
	return m.createFn(ctx, user, origin)
}

func (m *mockSessionManager) Validate(ctx context.Context, token string) (models.User, error) {
	return m.validateFn(ctx, token)
}

func (m *mockSessionManager) Destroy(ctx context.Context, token string) error {
	return m.destroyFn(ctx, token)
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// newTestHandler builds a Handler with the given service mocks.
func newTestHandler(t *testing.T, auth service.AuthService, sessions service.SessionManager) *Handler {
	t.Helper()
	svcs := &service.Services{
		AuthService:    auth,
		SessionManager: sessions,
	}
	return NewHandler(svcs, logger.Nop())
}

// jsonBody serialises v to a JSON request body string.
func jsonBody(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

// authedRequest returns a request whose context already carries the
// authenticated user and token, as requireLogin would leave it.
func authedRequest(method, target, body string, user models.User, token string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(utils.WithCurrentUser(req.Context(), user, token))
}

// activeUser is a convenience fixture used across multiple tests.
var activeUser = models.User{
	ID:       1,
	Username: "alice",
	Email:    "alice@example.com",
	Role:     models.RoleUser,
	Status:   models.StatusActive,
}

// ─────────────────────────────────────────────
// register
// ─────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	auth := &mockAuthService{
		registerFn: func(_ context.Context, req models.RegisterRequest, _ models.Origin) (models.User, error) {
			return models.User{ID: 1, Username: req.Username, Status: models.StatusActive}, nil
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	body := jsonBody(t, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "long-enough"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.register(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "alice", created.Username)
}

func TestRegister_InvalidJSON(t *testing.T) {
	h := newTestHandler(t, &mockAuthService{}, &mockSessionManager{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{invalid json}"))
	rec := httptest.NewRecorder()

	h.register(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_ValidationErrors(t *testing.T) {
	auth := &mockAuthService{
		registerFn: func(_ context.Context, _ models.RegisterRequest, _ models.Origin) (models.User, error) {
			return models.User{}, &service.ValidationError{Violations: []service.FieldViolation{
				{Field: "password", Message: "must be at least 8 characters"},
				{Field: "email", Message: "must be a valid email address"},
			}}
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.register(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Violations, 2)
}

func TestRegister_DuplicateIdentity(t *testing.T) {
	auth := &mockAuthService{
		registerFn: func(_ context.Context, _ models.RegisterRequest, _ models.Origin) (models.User, error) {
			return models.User{}, service.ErrDuplicateIdentity
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.register(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegister_Disabled(t *testing.T) {
	auth := &mockAuthService{
		registerFn: func(_ context.Context, _ models.RegisterRequest, _ models.Origin) (models.User, error) {
			return models.User{}, service.ErrRegistrationDisabled
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.register(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

// ─────────────────────────────────────────────
// login
// ─────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	session := models.Session{
		Token:     "tok",
		UserID:    1,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	auth := &mockAuthService{
		loginFn: func(_ context.Context, req models.LoginRequest, origin models.Origin) (models.Session, error) {
			assert.Equal(t, "alice", req.Identity)
			assert.NotEmpty(t, origin.IPAddress)
			return session, nil
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	body := jsonBody(t, models.LoginRequest{Identity: "alice", Password: "secret"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	req.Header.Set("User-Agent", "curl/8.0")
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	var got models.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "tok", got.Token)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _ models.LoginRequest, _ models.Origin) (models.Session, error) {
			return models.Session{}, service.ErrInvalidCredentials
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_UnknownIdentity(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _ models.LoginRequest, _ models.Origin) (models.Session, error) {
			return models.Session{}, service.ErrNotFound
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	// unknown identity and wrong password are indistinguishable to the client
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_LockedAccountSetsRetryAfter(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _ models.LoginRequest, _ models.Origin) (models.Session, error) {
			return models.Session{}, &service.AccountLockedError{RetryAfter: 10 * time.Minute}
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "600", rec.Header().Get("Retry-After"))
}

func TestLogin_InactiveAccount(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, _ models.LoginRequest, _ models.Origin) (models.Session, error) {
			return models.Session{}, &service.AccountNotActiveError{Status: models.StatusBanned}
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	h.login(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

// ─────────────────────────────────────────────
// logout
// ─────────────────────────────────────────────

func TestLogout_Success(t *testing.T) {
	var destroyed string
	auth := &mockAuthService{
		logoutFn: func(_ context.Context, token string, _ models.Origin) error {
			destroyed = token
			return nil
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := authedRequest(http.MethodPost, "/api/auth/logout", "", activeUser, "tok")
	rec := httptest.NewRecorder()

	h.logout(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tok", destroyed)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, sessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge, "cookie must be expired")
}

// ─────────────────────────────────────────────
// me
// ─────────────────────────────────────────────

func TestMe_ReturnsAuthenticatedUser(t *testing.T) {
	h := newTestHandler(t, &mockAuthService{}, &mockSessionManager{})
	req := authedRequest(http.MethodGet, "/api/auth/me", "", activeUser, "tok")
	rec := httptest.NewRecorder()

	h.me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, activeUser.ID, got.ID)
	assert.Equal(t, activeUser.Username, got.Username)
}

func TestMe_PasswordHashNeverSerialised(t *testing.T) {
	user := activeUser
	user.PasswordHash = "$2a$10$secret"

	h := newTestHandler(t, &mockAuthService{}, &mockSessionManager{})
	req := authedRequest(http.MethodGet, "/api/auth/me", "", user, "tok")
	rec := httptest.NewRecorder()

	h.me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

// ─────────────────────────────────────────────
// changePassword
// ─────────────────────────────────────────────

func TestChangePassword_Success(t *testing.T) {
	auth := &mockAuthService{
		changePasswordFn: func(_ context.Context, userID int64, req models.ChangePasswordRequest, _ models.Origin) error {
			assert.Equal(t, activeUser.ID, userID)
			assert.Equal(t, "old-password", req.OldPassword)
			return nil
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	body := jsonBody(t, models.ChangePasswordRequest{OldPassword: "old-password", NewPassword: "brand-new-password"})
	req := authedRequest(http.MethodPost, "/api/auth/password", body, activeUser, "tok")
	rec := httptest.NewRecorder()

	h.changePassword(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestChangePassword_WrongOldPassword(t *testing.T) {
	auth := &mockAuthService{
		changePasswordFn: func(_ context.Context, _ int64, _ models.ChangePasswordRequest, _ models.Origin) error {
			return service.ErrInvalidCredentials
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := authedRequest(http.MethodPost, "/api/auth/password", `{}`, activeUser, "tok")
	rec := httptest.NewRecorder()

	h.changePassword(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ─────────────────────────────────────────────
// updateProfile
// ─────────────────────────────────────────────

func TestUpdateProfile_Success(t *testing.T) {
	auth := &mockAuthService{
		updateProfileFn: func(_ context.Context, userID int64, update models.ProfileUpdate, _ models.Origin) (models.User, error) {
			require.NotNil(t, update.FullName)
			assert.Equal(t, "Alice Cooper", *update.FullName)
			assert.Nil(t, update.Email)
			updated := activeUser
			updated.FullName = *update.FullName
			return updated, nil
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := authedRequest(http.MethodPatch, "/api/auth/profile", `{"full_name":"Alice Cooper"}`, activeUser, "tok")
	rec := httptest.NewRecorder()

	h.updateProfile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Alice Cooper", got.FullName)
}

func TestUpdateProfile_NoChanges(t *testing.T) {
	auth := &mockAuthService{
		updateProfileFn: func(_ context.Context, _ int64, _ models.ProfileUpdate, _ models.Origin) (models.User, error) {
			return models.User{}, service.ErrNoChanges
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := authedRequest(http.MethodPatch, "/api/auth/profile", `{}`, activeUser, "tok")
	rec := httptest.NewRecorder()

	h.updateProfile(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProfile_EmailTaken(t *testing.T) {
	auth := &mockAuthService{
		updateProfileFn: func(_ context.Context, _ int64, _ models.ProfileUpdate, _ models.Origin) (models.User, error) {
			return models.User{}, service.ErrDuplicateIdentity
		},
	}

	h := newTestHandler(t, auth, &mockSessionManager{})
	req := authedRequest(http.MethodPatch, "/api/auth/profile", `{"email":"taken@example.com"}`, activeUser, "tok")
	rec := httptest.NewRecorder()

	h.updateProfile(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

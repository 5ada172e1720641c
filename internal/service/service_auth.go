package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/models"
)

// authService is the concrete implementation of [AuthService].
// It orchestrates the credential store, the password hasher, the lockout
// policy, the session manager and the activity recorder; it owns none of
// their mechanics.
//
// All state is read-only after construction, so the service is safe for
// concurrent use.
type authService struct {
	users    store.UserRepository
	hasher   PasswordHasher
	lockout  LockoutPolicy
	sessions SessionManager
	audit    Recorder

	validator *requestValidator

	// registrationEnabled gates self-service account creation.
	registrationEnabled bool

	logger *logger.Logger
}

// NewAuthService constructs an [AuthService] wired to the given dependencies
// and populated with the security policy from cfg.
func NewAuthService(
	users store.UserRepository,
	sessions SessionManager,
	audit Recorder,
	cfg config.Auth,
	logger *logger.Logger,
) AuthService {
	return &authService{
		users:               users,
		hasher:              NewBcryptHasher(cfg.BcryptCost),
		lockout:             NewLockoutPolicy(cfg),
		sessions:            sessions,
		audit:               audit,
		validator:           newRequestValidator(cfg.PasswordMinLength),
		registrationEnabled: cfg.RegistrationEnabled,
		logger:              logger,
	}
}

// Register creates a new account.
//
// The request is validated first and every violation is reported at once.
// Uniqueness of username and email is left entirely to the database unique
// constraints; there is no check-then-insert race.
//
// Returns the persisted user (active immediately, role user) or:
//   - [ErrRegistrationDisabled] when self-registration is switched off.
//   - [*ValidationError] listing all field violations.
//   - [ErrDuplicateIdentity] when the username or email is taken.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest, origin models.Origin) (models.User, error) {
	log := logger.FromContext(ctx)

	if !a.registrationEnabled {
		return models.User{}, ErrRegistrationDisabled
	}

	if err := a.validator.validateRegister(req); err != nil {
		return models.User{}, err
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		log.Err(err).Str("func", "*authService.Register").Msg("failed to hash password")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	user := models.User{
		Username:     sanitizeText(req.Username),
		Email:        normalizeEmail(req.Email),
		PasswordHash: hash,
		FullName:     sanitizeText(req.FullName),
	}

	created, err := a.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrIdentityExists) {
			return models.User{}, ErrDuplicateIdentity
		}
		log.Err(err).Str("func", "*authService.Register").Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	a.audit.Record(ctx, &created.ID, models.ActionUserRegistered, "New user registered: "+created.Username, origin)

	return created, nil
}

// Login authenticates by username or email and issues a session.
//
// Order of checks matters: the account status and any active lockout are
// examined before the password, so a locked or deactivated account never
// burns bcrypt time and never leaks whether the password was right.
//
// Returns the new session or:
//   - [ErrNotFound] when no account matches the identity.
//   - [*AccountNotActiveError] when the account status forbids login.
//   - [*AccountLockedError] with the remaining wait while locked.
//   - [ErrInvalidCredentials] on password mismatch; the failure is counted
//     and may trip the lockout with an `account_locked` audit event.
func (a *authService) Login(ctx context.Context, req models.LoginRequest, origin models.Origin) (models.Session, error) {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByIdentity(ctx, req.Identity)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return models.Session{}, ErrNotFound
		}
		log.Err(err).Str("func", "*authService.Login").Msg("user search by identity failed")
		return models.Session{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if !user.CanAuthenticate() {
		return models.Session{}, &AccountNotActiveError{Status: user.Status}
	}

	now := time.Now()
	if remaining := a.lockout.Remaining(user.LockoutUntil, now); remaining > 0 {
		return models.Session{}, &AccountLockedError{RetryAfter: remaining}
	}

	if !a.hasher.Verify(req.Password, user.PasswordHash) {
		a.registerFailedAttempt(ctx, user, origin, now)
		return models.Session{}, ErrInvalidCredentials
	}

	if err := a.users.ResetLoginAttempts(ctx, user.ID); err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("failed to reset login attempts")
		return models.Session{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	session, err := a.sessions.Create(ctx, user, origin)
	if err != nil {
		log.Err(err).Str("func", "*authService.Login").Msg("failed to create session")
		return models.Session{}, fmt.Errorf("session creation ended with error: %w", err)
	}

	if err := a.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// last_login is informational, a failed write must not undo the login
		log.Warn().Err(err).Str("func", "*authService.Login").Msg("failed to update last login")
	}

	a.audit.Record(ctx, &user.ID, models.ActionUserLogin, "User logged in: "+user.Username, origin)

	return session, nil
}

// registerFailedAttempt applies the failure transition of the lockout policy:
// increment the counter and, when the threshold is reached, lock the account
// and record an `account_locked` audit event.
func (a *authService) registerFailedAttempt(ctx context.Context, user models.User, origin models.Origin, now time.Time) {
	log := logger.FromContext(ctx)

	attempts, err := a.users.IncrementLoginAttempts(ctx, user.ID)
	if err != nil {
		log.Err(err).Str("func", "*authService.registerFailedAttempt").Msg("failed to increment login attempts")
		return
	}

	if !a.lockout.ShouldLock(attempts) {
		return
	}

	until := a.lockout.LockUntil(now)
	if err := a.users.SetLockout(ctx, user.ID, until); err != nil {
		log.Err(err).Str("func", "*authService.registerFailedAttempt").Msg("failed to set lockout")
		return
	}

	log.Warn().
		Str("func", "*authService.registerFailedAttempt").
		Int64("user_id", user.ID).
		Int("attempts", attempts).
		Time("until", until).
		Msg("account locked after repeated failures")

	a.audit.Record(ctx, &user.ID, models.ActionAccountLocked,
		fmt.Sprintf("Account locked after %d failed attempts: %s", attempts, user.Username), origin)
}

// Logout destroys the session behind the token. It is idempotent: a token
// that resolves to nothing still logs out successfully. When the session
// still maps to a user, a `user_logout` audit event is recorded first.
func (a *authService) Logout(ctx context.Context, token string, origin models.Origin) error {
	if user, err := a.sessions.Validate(ctx, token); err == nil {
		a.audit.Record(ctx, &user.ID, models.ActionUserLogout, "User logged out: "+user.Username, origin)
	}

	return a.sessions.Destroy(ctx, token)
}

// ChangePassword replaces the caller's password after verifying the current
// one. The new password is checked against the same length rule registration
// applies.
//
// Returns:
//   - [ErrInvalidCredentials] when the old password does not match.
//   - [*ValidationError] when the new password is too short.
//   - [ErrNotFound] when the account no longer exists.
func (a *authService) ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest, origin models.Origin) error {
	log := logger.FromContext(ctx)

	if err := a.validator.validateNewPassword(req.NewPassword); err != nil {
		return err
	}

	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNotFound
		}
		log.Err(err).Str("func", "*authService.ChangePassword").Msg("user lookup failed")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if !a.hasher.Verify(req.OldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := a.hasher.Hash(req.NewPassword)
	if err != nil {
		log.Err(err).Str("func", "*authService.ChangePassword").Msg("failed to hash password")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if err := a.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return ErrNotFound
		}
		log.Err(err).Str("func", "*authService.ChangePassword").Msg("failed to store new password")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	a.audit.Record(ctx, &user.ID, models.ActionPasswordChanged, "Password changed: "+user.Username, origin)

	return nil
}

// UpdateProfile applies a partial update to the caller's own profile.
// The update struct is the complete allow-list of mutable attributes, so
// role, status and credentials are unreachable from this path by
// construction.
//
// Returns the refreshed user or:
//   - [ErrNoChanges] when the update carries no fields.
//   - [*ValidationError] when the new email is malformed.
//   - [ErrDuplicateIdentity] when the new email is taken.
//   - [ErrNotFound] when the account no longer exists.
func (a *authService) UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate, origin models.Origin) (models.User, error) {
	log := logger.FromContext(ctx)

	if update.Empty() {
		return models.User{}, ErrNoChanges
	}

	if update.FullName != nil {
		clean := sanitizeText(*update.FullName)
		update.FullName = &clean
	}
	if update.Email != nil {
		clean := normalizeEmail(*update.Email)
		if err := a.validator.validateEmail(clean); err != nil {
			return models.User{}, err
		}
		update.Email = &clean
	}

	if err := a.users.UpdateProfileFields(ctx, userID, update); err != nil {
		switch {
		case errors.Is(err, store.ErrIdentityExists):
			return models.User{}, ErrDuplicateIdentity
		case errors.Is(err, store.ErrUserNotFound):
			return models.User{}, ErrNotFound
		case errors.Is(err, store.ErrNoFieldsToUpdate):
			return models.User{}, ErrNoChanges
		}
		log.Err(err).Str("func", "*authService.UpdateProfile").Msg("profile update ended with error")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		log.Err(err).Str("func", "*authService.UpdateProfile").Msg("failed to reload updated user")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	a.audit.Record(ctx, &user.ID, models.ActionProfileUpdated, "Profile updated: "+user.Username, origin)

	return user, nil
}

// GetCurrentUser resolves a session token to its owning user.
// See [SessionManager.Validate] for the exact validity rules.
func (a *authService) GetCurrentUser(ctx context.Context, token string) (models.User, error) {
	return a.sessions.Validate(ctx, token)
}

// ListUsers returns one page of the admin user listing, newest accounts
// first, together with pagination metadata. Page numbering starts at 1;
// out-of-range values are clamped to sane defaults.
func (a *authService) ListUsers(ctx context.Context, page, pageSize int) (models.UserPage, error) {
	log := logger.FromContext(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}

	total, err := a.users.CountUsers(ctx)
	if err != nil {
		log.Err(err).Str("func", "*authService.ListUsers").Msg("failed to count users")
		return models.UserPage{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	users, err := a.users.ListUsers(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		log.Err(err).Str("func", "*authService.ListUsers").Msg("failed to list users")
		return models.UserPage{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return models.UserPage{
		Users:      users,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// RecentActivity returns up to limit audit events, newest first, for the
// admin activity feed.
func (a *authService) RecentActivity(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	log := logger.FromContext(ctx)

	if limit < 1 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}

	events, err := a.audit.Recent(ctx, limit)
	if err != nil {
		log.Err(err).Str("func", "*authService.RecentActivity").Msg("failed to load recent activity")
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return events, nil
}

// Paging and feed bounds for the admin read surface.
const (
	defaultPageSize = 20
	maxPageSize     = 100

	defaultActivityLimit = 10
	maxActivityLimit     = 100
)

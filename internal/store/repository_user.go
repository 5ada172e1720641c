package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles account creation, lookup and the single-row mutations used by
// the login lockout machinery against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
//
// A debug-level log message is emitted at construction time to aid
// application startup diagnostics.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (ID, Role, Status, CreatedAt).
//
// The INSERT uses the [createUser] query which returns all columns via a
// RETURNING clause, so the caller receives the canonical database
// representation of the newly created account.
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrIdentityExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Username, user.Email, user.PasswordHash, user.FullName)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrIdentityExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	var created models.User
	if err := scanUser(row, &created); err != nil {
		// the unique violation can also surface at Scan time depending on the
		// driver's row buffering
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrIdentityExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return created, nil
}

// FindUserByIdentity retrieves a user record whose username or email matches
// the given identity. Email comparison is case-insensitive because addresses
// are stored lowercased.
//
// Returns [ErrUserNotFound] if no account matches.
func (r *userRepository) FindUserByIdentity(ctx context.Context, identity string) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	row := r.db.QueryRowContext(ctx, findUserByIdentity, identity)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByIdentity").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanUser(row, &found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByIdentity").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return found, nil
}

// GetUserByID retrieves a user record by its numeric identifier.
//
// Returns [ErrUserNotFound] if no account has the given ID.
func (r *userRepository) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	log := logger.FromContext(ctx)

	var found models.User
	row := r.db.QueryRowContext(ctx, getUserByID, id)

	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.GetUserByID").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	if err := scanUser(row, &found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.GetUserByID").Msg("error: scanning error")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return found, nil
}

// UpdateProfileFields applies a partial profile update to the given account.
// The UPDATE statement is built dynamically via [buildUpdateUserQuery] so
// that only the non-nil fields of the update are written.
//
// Error handling:
//   - Update with no fields set → [ErrNoFieldsToUpdate].
//   - PostgreSQL unique_violation on the email column → [ErrIdentityExists].
//   - Zero rows affected → [ErrUserNotFound].
func (r *userRepository) UpdateProfileFields(ctx context.Context, id int64, update models.ProfileUpdate) error {
	log := logger.FromContext(ctx)

	if update.Empty() {
		log.Warn().
			Str("func", "*userRepository.UpdateProfileFields").
			Int64("user_id", id).
			Msg("no fields to update")
		return ErrNoFieldsToUpdate
	}

	query, args, err := buildUpdateUserQuery(id, update)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateProfileFields").Msg("failed to build update query")
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, execErr := r.db.ExecContext(ctx, query, args...)
	if execErr != nil {
		if postgresError(execErr) == pgerrcode.UniqueViolation {
			return ErrIdentityExists
		}
		log.Err(execErr).Str("func", "*userRepository.UpdateProfileFields").Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
	}

	return r.requireOneAffectedRow(ctx, result, "*userRepository.UpdateProfileFields")
}

// UpdatePassword replaces the stored password hash of the given account.
//
// Returns [ErrUserNotFound] if no account has the given ID.
func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateUserPassword, passwordHash, id)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdatePassword").Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return r.requireOneAffectedRow(ctx, result, "*userRepository.UpdatePassword")
}

// IncrementLoginAttempts atomically increments the failed-login counter of
// the given account and returns the new value. Increment and read-back happen
// in one statement, so concurrent failed logins for the same account cannot
// lose updates.
//
// Returns [ErrUserNotFound] if no account has the given ID.
func (r *userRepository) IncrementLoginAttempts(ctx context.Context, id int64) (int, error) {
	log := logger.FromContext(ctx)

	var attempts int
	if err := r.db.QueryRowContext(ctx, incrementLoginAttempts, id).Scan(&attempts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.IncrementLoginAttempts").Msg("failed to execute update query")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return attempts, nil
}

// SetLockout marks the given account as locked until the given instant.
func (r *userRepository) SetLockout(ctx context.Context, id int64, until time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, setUserLockout, until, id)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SetLockout").Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return r.requireOneAffectedRow(ctx, result, "*userRepository.SetLockout")
}

// ResetLoginAttempts clears the failed-login counter and any lockout of the
// given account. Called after a successful login and when a lockout window
// has expired.
func (r *userRepository) ResetLoginAttempts(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, resetLoginAttempts, id)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ResetLoginAttempts").Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return r.requireOneAffectedRow(ctx, result, "*userRepository.ResetLoginAttempts")
}

// UpdateLastLogin records the instant of the latest successful login.
func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, updateLastLogin, at, id)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdateLastLogin").Msg("failed to execute update query")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return r.requireOneAffectedRow(ctx, result, "*userRepository.UpdateLastLogin")
}

// ListUsers returns a page of user records ordered by creation time,
// newest first. The SELECT is built via [buildListUsersQuery].
func (r *userRepository) ListUsers(ctx context.Context, offset, limit int) ([]models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListUsersQuery(offset, limit)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ListUsers").Msg("failed to build select query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, queryErr := r.db.QueryContext(ctx, query, args...)
	if queryErr != nil {
		log.Err(queryErr).Str("func", "*userRepository.ListUsers").Msg("failed to execute select query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, queryErr)
	}
	defer func() { _ = rows.Close() }()

	users := make([]models.User, 0, limit)
	for rows.Next() {
		var user models.User
		if scanErr := scanUser(rows, &user); scanErr != nil {
			log.Err(scanErr).Str("func", "*userRepository.ListUsers").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		users = append(users, user)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "*userRepository.ListUsers").Msg("error: rows iteration error")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return users, nil
}

// CountUsers returns the total number of user records.
func (r *userRepository) CountUsers(ctx context.Context) (int64, error) {
	log := logger.FromContext(ctx)

	var total int64
	if err := r.db.QueryRowContext(ctx, countUsers).Scan(&total); err != nil {
		log.Err(err).Str("func", "*userRepository.CountUsers").Msg("failed to execute select query")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return total, nil
}

// requireOneAffectedRow maps a zero-rows-affected result onto
// [ErrUserNotFound]. All single-row user mutations go through it.
func (r *userRepository) requireOneAffectedRow(ctx context.Context, result sql.Result, funcName string) error {
	log := logger.FromContext(ctx)

	affected, err := result.RowsAffected()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to read affected rows")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser scans all user columns, in [userColumns] order, into dst.
func scanUser(row rowScanner, dst *models.User) error {
	return row.Scan(
		&dst.ID,
		&dst.Username,
		&dst.Email,
		&dst.PasswordHash,
		&dst.FullName,
		&dst.Role,
		&dst.Status,
		&dst.LoginAttempts,
		&dst.LockoutUntil,
		&dst.CreatedAt,
		&dst.LastLogin,
	)
}

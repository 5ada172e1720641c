package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/accountd/accountd/models"
)

const userColumns = `id, username, email, password_hash, full_name, role, status, login_attempts, lockout_until, created_at, last_login`

const (
	createUser = `INSERT INTO users (username, email, password_hash, full_name)
    VALUES ($1, $2, $3, $4)
    RETURNING ` + userColumns + `;`

	findUserByIdentity = `SELECT ` + userColumns + `
    FROM users
    WHERE username = $1 OR email = lower($1);`

	getUserByID = `SELECT ` + userColumns + `
    FROM users
    WHERE id = $1;`

	updateUserPassword = `UPDATE users
    SET password_hash = $1
    WHERE id = $2;`

	// Incrementing and reading back in one statement keeps the counter
	// correct under concurrent failed logins for the same account.
	incrementLoginAttempts = `UPDATE users
    SET login_attempts = login_attempts + 1
    WHERE id = $1
    RETURNING login_attempts;`

	setUserLockout = `UPDATE users
    SET lockout_until = $1
    WHERE id = $2;`

	resetLoginAttempts = `UPDATE users
    SET login_attempts = 0, lockout_until = NULL
    WHERE id = $1;`

	updateLastLogin = `UPDATE users
    SET last_login = $1
    WHERE id = $2;`

	countUsers = `SELECT count(*) FROM users;`

	insertActivityEvent = `INSERT INTO activity_log (user_id, action, description, ip_address, user_agent)
    VALUES ($1, $2, $3, $4, $5);`

	recentActivityEvents = `SELECT id, user_id, action, description, ip_address, user_agent, created_at
    FROM activity_log
    ORDER BY created_at DESC
    LIMIT $1;`
)

// psql builds queries with PostgreSQL-style $N placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildUpdateUserQuery dynamically builds an UPDATE statement that sets only
// the non-nil fields of the profile update.
func buildUpdateUserQuery(id int64, update models.ProfileUpdate) (string, []any, error) {
	builder := psql.Update(models.User{}.TableName())

	if update.FullName != nil {
		builder = builder.Set("full_name", *update.FullName)
	}
	if update.Email != nil {
		builder = builder.Set("email", *update.Email)
	}

	return builder.Where(sq.Eq{"id": id}).ToSql()
}

// buildListUsersQuery builds a paginated SELECT over the users table,
// ordered by creation time descending so the newest accounts come first.
func buildListUsersQuery(offset, limit int) (string, []any, error) {
	return psql.
		Select("id", "username", "email", "password_hash", "full_name", "role", "status", "login_attempts", "lockout_until", "created_at", "last_login").
		From(models.User{}.TableName()).
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
}

package store

import (
	"context"
	"time"

	"github.com/accountd/accountd/models"
)

// UserRepository is the data-access contract for account records.
// Every mutation of a single user row is a single atomic SQL statement, so
// conflicting writes for the same account serialize at the database.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByIdentity(ctx context.Context, identity string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)

	UpdateProfileFields(ctx context.Context, id int64, update models.ProfileUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	IncrementLoginAttempts(ctx context.Context, id int64) (int, error)
	SetLockout(ctx context.Context, id int64, until time.Time) error
	ResetLoginAttempts(ctx context.Context, id int64) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error

	ListUsers(ctx context.Context, offset, limit int) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// ActivityRepository appends immutable audit events. There is deliberately
// no update or delete operation on this contract.
type ActivityRepository interface {
	InsertEvent(ctx context.Context, event models.ActivityEvent) error
	RecentEvents(ctx context.Context, limit int) ([]models.ActivityEvent, error)
}

// SessionStore keeps live sessions keyed by their opaque token.
// Implementations must expire entries on their own once the session
// lifetime elapses (the Redis implementation relies on key TTLs).
type SessionStore interface {
	SaveSession(ctx context.Context, session models.Session, ttl time.Duration) error
	GetSession(ctx context.Context, token string) (models.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

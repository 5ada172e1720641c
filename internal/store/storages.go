package store

import (
	"context"
	"fmt"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logger"
)

// Storages bundles every persistence-layer dependency of the application:
// the PostgreSQL-backed repositories and the Redis session store.
type Storages struct {
	UserRepository     UserRepository
	ActivityRepository ActivityRepository
	SessionStore       SessionStore
}

// NewStorages connects to PostgreSQL and Redis as described by cfg, applies
// pending database migrations and returns the assembled [Storages].
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("error creating database connection: %w", err)
	}

	if err := db.Migrate(); err != nil {
		return nil, fmt.Errorf("error applying migrations: %w", err)
	}

	sessions, err := NewRedisSessionStore(ctx, cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("error creating session store: %w", err)
	}

	return &Storages{
		UserRepository:     NewUserRepository(db, log),
		ActivityRepository: NewActivityRepository(db, log),
		SessionStore:       sessions,
	}, nil
}

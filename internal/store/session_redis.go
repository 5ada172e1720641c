package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/models"
	"github.com/redis/go-redis/v9"
)

// sessionKeyPrefix namespaces session entries inside the Redis keyspace.
const sessionKeyPrefix = "session:"

// redisSessionStore is the Redis-backed implementation of [SessionStore].
//
// Sessions are stored as JSON values under "session:<token>" keys with a TTL
// equal to the remaining session lifetime, so expiry needs no sweeper: Redis
// evicts stale sessions on its own and a [GetSession] after expiry simply
// reports [ErrSessionNotFound].
type redisSessionStore struct {
	logger *logger.Logger
	client *redis.Client
}

// NewRedisSessionStore connects to Redis using the provided configuration and
// returns a [SessionStore] backed by it. The connection is verified with a
// PING before the store is returned.
func NewRedisSessionStore(ctx context.Context, cfg config.Redis, log *logger.Logger) (SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.Database,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisSessionStore").Msg("error connecting redis (ping)")
		return nil, fmt.Errorf("error occured during redis connection: %w", err)
	}
	log.Info().Str("func", "NewRedisSessionStore").Msg("connected to redis successfully")

	return &redisSessionStore{
		logger: log,
		client: client,
	}, nil
}

// SaveSession stores the session under its token with the given TTL.
func (s *redisSessionStore) SaveSession(ctx context.Context, session models.Session, ttl time.Duration) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(session)
	if err != nil {
		log.Err(err).Str("func", "*redisSessionStore.SaveSession").Msg("failed to marshal session")
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(session.Token), payload, ttl).Err(); err != nil {
		log.Err(err).Str("func", "*redisSessionStore.SaveSession").Msg("failed to store session")
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// GetSession loads the session stored under the given token.
//
// Returns [ErrSessionNotFound] when the key is absent, whether it never
// existed or its TTL elapsed.
func (s *redisSessionStore) GetSession(ctx context.Context, token string) (models.Session, error) {
	log := logger.FromContext(ctx)

	payload, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, ErrSessionNotFound
		}
		log.Err(err).Str("func", "*redisSessionStore.GetSession").Msg("failed to load session")
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		log.Err(err).Str("func", "*redisSessionStore.GetSession").Msg("failed to unmarshal session")
		return models.Session{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return session, nil
}

// DeleteSession removes the session stored under the given token. Deleting a
// token that is already gone is not an error, which makes logout idempotent.
func (s *redisSessionStore) DeleteSession(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if err := s.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		log.Err(err).Str("func", "*redisSessionStore.DeleteSession").Msg("failed to delete session")
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

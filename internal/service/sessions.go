package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/models"
)

// sessionTokenBytes is the entropy of a session token before hex encoding.
// 32 bytes yields a 64-character token.
const sessionTokenBytes = 32

// SessionManager owns the lifecycle of opaque server-side sessions: creation
// with a random token, validation back to the owning user, and destruction.
//
// Tokens are pure random handles with no embedded claims, so destroying the
// stored session revokes the token immediately.
type SessionManager interface {
	Create(ctx context.Context, user models.User, origin models.Origin) (models.Session, error)
	Validate(ctx context.Context, token string) (models.User, error)
	Destroy(ctx context.Context, token string) error
}

type sessionManager struct {
	sessions store.SessionStore
	users    store.UserRepository
	lifetime time.Duration
	logger   *logger.Logger
}

// NewSessionManager constructs a [SessionManager] with the session lifetime
// taken from the auth configuration.
func NewSessionManager(sessions store.SessionStore, users store.UserRepository, cfg config.Auth, logger *logger.Logger) SessionManager {
	return &sessionManager{
		sessions: sessions,
		users:    users,
		lifetime: cfg.SessionLifetime,
		logger:   logger,
	}
}

// Create issues a fresh session for the user and stores it with a TTL equal
// to the configured lifetime. A user may hold any number of concurrent
// sessions.
func (m *sessionManager) Create(ctx context.Context, user models.User, origin models.Origin) (models.Session, error) {
	log := logger.FromContext(ctx)

	token, err := generateSessionToken()
	if err != nil {
		log.Err(err).Str("func", "*sessionManager.Create").Msg("failed to generate session token")
		return models.Session{}, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := time.Now()
	session := models.Session{
		Token:     token,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.lifetime),
		IPAddress: origin.IPAddress,
		UserAgent: origin.UserAgent,
	}

	if err := m.sessions.SaveSession(ctx, session, m.lifetime); err != nil {
		log.Err(err).Str("func", "*sessionManager.Create").Msg("failed to store session")
		return models.Session{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return session, nil
}

// Validate resolves a token to its owning user.
//
// A token is valid only while the stored session exists, is not past its
// expiry instant, and its owner can still authenticate. A session whose owner
// has been deactivated or banned is destroyed on sight, so a valid token
// always maps to exactly one active account.
//
// Returns [ErrSessionInvalid] or [ErrSessionExpired].
func (m *sessionManager) Validate(ctx context.Context, token string) (models.User, error) {
	log := logger.FromContext(ctx)

	if token == "" {
		return models.User{}, ErrSessionInvalid
	}

	session, err := m.sessions.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return models.User{}, ErrSessionInvalid
		}
		log.Err(err).Str("func", "*sessionManager.Validate").Msg("failed to load session")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	// The Redis TTL normally evicts expired sessions first, but the expiry
	// instant stored in the session stays authoritative.
	if session.Expired(time.Now()) {
		m.destroyQuietly(ctx, token)
		return models.User{}, ErrSessionExpired
	}

	user, err := m.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			m.destroyQuietly(ctx, token)
			return models.User{}, ErrSessionInvalid
		}
		log.Err(err).Str("func", "*sessionManager.Validate").Msg("failed to load session owner")
		return models.User{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}

	if !user.CanAuthenticate() {
		log.Warn().
			Str("func", "*sessionManager.Validate").
			Int64("user_id", user.ID).
			Str("status", string(user.Status)).
			Msg("destroying session of non-authenticatable user")
		m.destroyQuietly(ctx, token)
		return models.User{}, ErrSessionInvalid
	}

	return user, nil
}

// Destroy removes the session behind the token. Destroying a token that no
// longer exists is not an error, which makes logout idempotent.
func (m *sessionManager) Destroy(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	if err := m.sessions.DeleteSession(ctx, token); err != nil {
		log.Err(err).Str("func", "*sessionManager.Destroy").Msg("failed to delete session")
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return nil
}

// destroyQuietly removes a session that Validate found to be stale.
// A delete failure here only means the stale entry lives until its TTL.
func (m *sessionManager) destroyQuietly(ctx context.Context, token string) {
	if err := m.sessions.DeleteSession(ctx, token); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "*sessionManager.destroyQuietly").
			Msg("failed to delete stale session")
	}
}

// generateSessionToken returns a hex-encoded random token.
func generateSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

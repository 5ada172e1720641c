package service

import (
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/store"
)

// Services bundles the application-layer services handed to the transport.
type Services struct {
	AuthService    AuthService
	SessionManager SessionManager
}

// NewServices assembles the service layer on top of the storages.
func NewServices(storages *store.Storages, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	sessions := NewSessionManager(storages.SessionStore, storages.UserRepository, cfg.Auth, logger)
	audit := NewActivityRecorder(storages.ActivityRepository, logger)

	return &Services{
		AuthService:    NewAuthService(storages.UserRepository, sessions, audit, cfg.Auth, logger),
		SessionManager: sessions,
	}
}

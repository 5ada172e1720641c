package http

import (
	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/service"
)

// sessionCookieName is the cookie carrying the session token for browser
// clients. API clients may present the same token as a bearer token instead.
const sessionCookieName = "accountd_session"

type Handler struct {
	services *service.Services

	logger *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

package service

import (
	"context"

	"github.com/accountd/accountd/models"
)

// AuthService is the application core: registration, login with lockout
// enforcement, session lifecycle, self-service account changes and the
// admin read surface.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest, origin models.Origin) (models.User, error)
	Login(ctx context.Context, req models.LoginRequest, origin models.Origin) (models.Session, error)
	Logout(ctx context.Context, token string, origin models.Origin) error

	ChangePassword(ctx context.Context, userID int64, req models.ChangePasswordRequest, origin models.Origin) error
	UpdateProfile(ctx context.Context, userID int64, update models.ProfileUpdate, origin models.Origin) (models.User, error)

	GetCurrentUser(ctx context.Context, token string) (models.User, error)

	ListUsers(ctx context.Context, page, pageSize int) (models.UserPage, error)
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityEvent, error)
}

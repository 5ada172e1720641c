package service

import (
	"context"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/models"
)

// Recorder appends events to the activity log. Recording is strictly
// fire-and-forget: a failed insert is logged to the operational channel and
// swallowed, never failing the operation that produced the event.
type Recorder interface {
	Record(ctx context.Context, userID *int64, action, description string, origin models.Origin)
	Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error)
}

type activityRecorder struct {
	repository store.ActivityRepository
	logger     *logger.Logger
}

// NewActivityRecorder constructs a [Recorder] over the given repository.
func NewActivityRecorder(repository store.ActivityRepository, logger *logger.Logger) Recorder {
	return &activityRecorder{
		repository: repository,
		logger:     logger,
	}
}

// Record appends one event. userID may be nil for events without a resolved
// account, such as failed logins against unknown identities.
func (r *activityRecorder) Record(ctx context.Context, userID *int64, action, description string, origin models.Origin) {
	event := models.ActivityEvent{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   origin.IPAddress,
		UserAgent:   origin.UserAgent,
	}

	if err := r.repository.InsertEvent(ctx, event); err != nil {
		logger.FromContext(ctx).Error().Err(err).
			Str("func", "*activityRecorder.Record").
			Str("action", action).
			Msg("failed to record activity event")
	}
}

// Recent returns up to limit events, newest first.
func (r *activityRecorder) Recent(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	return r.repository.RecentEvents(ctx, limit)
}

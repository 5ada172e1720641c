package store

import (
	"context"
	"fmt"

	"github.com/accountd/accountd/internal/logger"
	"github.com/accountd/accountd/models"
)

// activityRepository is the PostgreSQL-backed implementation of
// [ActivityRepository]. It appends rows to the append-only "activity_log"
// table and serves the recent-activity feed for administrators.
type activityRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewActivityRepository constructs an [ActivityRepository] backed by the
// provided database connection and logger.
func NewActivityRepository(db *DB, logger *logger.Logger) ActivityRepository {
	logger.Debug().Msg("creating activity repository")
	return &activityRepository{
		db:     db,
		logger: logger,
	}
}

// InsertEvent appends one audit event. The ID and timestamp are assigned by
// the database.
func (r *activityRepository) InsertEvent(ctx context.Context, event models.ActivityEvent) error {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, insertActivityEvent,
		event.UserID, event.Action, event.Description, event.IPAddress, event.UserAgent)
	if err != nil {
		log.Err(err).Str("func", "*activityRepository.InsertEvent").Msg("failed to execute insert statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// RecentEvents returns up to limit events, newest first.
func (r *activityRepository) RecentEvents(ctx context.Context, limit int) ([]models.ActivityEvent, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, recentActivityEvents, limit)
	if err != nil {
		log.Err(err).Str("func", "*activityRepository.RecentEvents").Msg("failed to execute select query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer func() { _ = rows.Close() }()

	events := make([]models.ActivityEvent, 0, limit)
	for rows.Next() {
		var event models.ActivityEvent
		scanErr := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.Action,
			&event.Description,
			&event.IPAddress,
			&event.UserAgent,
			&event.CreatedAt,
		)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*activityRepository.RecentEvents").Msg("error: scanning error")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, scanErr)
		}
		events = append(events, event)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		log.Err(rowsErr).Str("func", "*activityRepository.RecentEvents").Msg("error: rows iteration error")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, rowsErr)
	}

	return events, nil
}

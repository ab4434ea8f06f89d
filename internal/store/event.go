package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/bioenroll/gateway/types"
	"github.com/google/uuid"
)

// EventRepository handles persistence for enrollment audit events.
type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Record appends an event. A missing ID or timestamp is filled in here.
func (r *EventRepository) Record(ctx context.Context, event types.EnrollmentEvent) (types.EnrollmentEvent, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	const query = `
		INSERT INTO enrollment_events (id, action, uid, user_id, succeeded, message, next_step, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.Action,
		event.UID,
		event.UserID,
		event.Succeeded,
		event.Message,
		event.NextStep,
		event.Actor,
		event.CreatedAt,
	)
	if err != nil {
		return types.EnrollmentEvent{}, err
	}
	return event, nil
}

// List returns events newest first, plus the total count.
func (r *EventRepository) List(ctx context.Context, offset, limit int) ([]types.EnrollmentEvent, int, error) {
	const countQuery = `SELECT COUNT(*) FROM enrollment_events`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
		SELECT id, action, uid, user_id, succeeded, message, next_step, actor, created_at
		FROM enrollment_events
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]types.EnrollmentEvent, 0, limit)
	for rows.Next() {
		var event types.EnrollmentEvent
		if err := rows.Scan(
			&event.ID,
			&event.Action,
			&event.UID,
			&event.UserID,
			&event.Succeeded,
			&event.Message,
			&event.NextStep,
			&event.Actor,
			&event.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

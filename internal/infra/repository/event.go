package repository

import (
	"context"
	"time"

	"hotel-booking/internal/infra"
	"hotel-booking/internal/infra/db"
	"hotel-booking/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
)

const insertEventSQL = `
INSERT INTO booking_events (booking_id, event_type, event_key, payload, status, created_at)
VALUES ($1, $2, $3, $4, 'pending', $5)`

const claimEventsSQL = `
SELECT id, booking_id, event_type, event_key, payload, attempts, created_at
FROM booking_events
WHERE status = 'pending'
ORDER BY id
LIMIT $1
FOR UPDATE SKIP LOCKED`

const markEventsPublishedSQL = `
UPDATE booking_events SET status = 'published', published_at = $2
WHERE id = ANY($1)`

const markEventFailedSQL = `
UPDATE booking_events
SET attempts = attempts + 1,
    last_error = $2,
    status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE status END
WHERE id = $1`

// EventRepository is the transactional outbox for booking lifecycle events.
type EventRepository struct {
	db db.DBTX
}

func NewEventRepository(db db.DBTX) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Enqueue(ctx context.Context, tx db.DBTX, ev shared.BookingEvent) error {
	payload, err := ev.Payload()
	if err != nil {
		return infra.WrapRepoErr("failed to encode booking event", err, infra.KindDBFailure)
	}
	_, err = tx.Exec(ctx, insertEventSQL, ev.ID, string(ev.Type), ev.BookingID, payload, ev.OccurredAt)
	if err != nil {
		return infra.WrapRepoErr("failed to enqueue booking event", err)
	}
	return nil
}

func (r *EventRepository) ClaimPending(ctx context.Context, tx db.DBTX, limit int) ([]shared.OutboxEvent, error) {
	rows, err := tx.Query(ctx, claimEventsSQL, limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to claim booking events", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shared.OutboxEvent, error) {
		var (
			ev        shared.OutboxEvent
			eventType string
		)
		scanErr := row.Scan(&ev.ID, &ev.BookingID, &eventType, &ev.Key, &ev.Payload, &ev.Attempts, &ev.CreatedAt)
		ev.Type = shared.EventType(eventType)
		return ev, scanErr
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan booking events", err)
	}
	return events, nil
}

func (r *EventRepository) MarkPublished(ctx context.Context, tx db.DBTX, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := tx.Exec(ctx, markEventsPublishedSQL, ids, at); err != nil {
		return infra.WrapRepoErr("failed to mark booking events published", err)
	}
	return nil
}

func (r *EventRepository) MarkFailed(ctx context.Context, tx db.DBTX, id int64, lastError string, maxAttempts int) error {
	if _, err := tx.Exec(ctx, markEventFailedSQL, id, lastError, maxAttempts); err != nil {
		return infra.WrapRepoErr("failed to record booking event failure", err)
	}
	return nil
}

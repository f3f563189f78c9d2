package queries

const (
	InsertOutboxEvent = `
		INSERT INTO outbox_events (
			id,
			event_type,
			order_id,
			result_id,
			payload,
			status,
			attempts,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	GetPendingOutboxEvents = `
		SELECT
			id,
			event_type,
			order_id,
			result_id,
			payload,
			status,
			attempts,
			last_error,
			created_at,
			processed_at
		FROM outbox_events
		WHERE status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1
	`

	MarkOutboxEventProcessed = `
		UPDATE outbox_events
		SET status = 'processed',
			processed_at = $2
		WHERE id = $1
	`

	IncrementOutboxEventAttempts = `
		UPDATE outbox_events
		SET attempts = attempts + 1,
			last_error = $2
		WHERE id = $1
	`

	MarkOutboxEventDead = `
		UPDATE outbox_events
		SET status = 'dead',
			last_error = $2,
			processed_at = $3
		WHERE id = $1
	`
)

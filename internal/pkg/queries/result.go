package queries

const (
	InsertResult = `
		INSERT INTO results (
			id,
			order_id,
			external_ref,
			reported_values,
			has_critical_values,
			is_reviewed,
			received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	GetResultByID = `
		SELECT
			id,
			order_id,
			external_ref,
			reported_values,
			has_critical_values,
			is_reviewed,
			reviewed_by,
			reviewed_at,
			ready_notified_at,
			received_at
		FROM results
		WHERE id = $1
	`

	GetResultByExternalRef = `
		SELECT
			id,
			order_id,
			external_ref,
			reported_values,
			has_critical_values,
			is_reviewed,
			reviewed_by,
			reviewed_at,
			ready_notified_at,
			received_at
		FROM results
		WHERE external_ref = $1
	`

	GetResultsByOrderID = `
		SELECT
			id,
			order_id,
			external_ref,
			reported_values,
			has_critical_values,
			is_reviewed,
			reviewed_by,
			reviewed_at,
			ready_notified_at,
			received_at
		FROM results
		WHERE order_id = $1
		ORDER BY received_at DESC
	`

	// MarkResultReviewed only fires on unreviewed rows; the flag never reverts.
	MarkResultReviewed = `
		UPDATE results
		SET is_reviewed = TRUE,
			reviewed_by = $2,
			reviewed_at = $3
		WHERE id = $1 AND is_reviewed = FALSE
	`

	MarkResultReadyNotified = `
		UPDATE results
		SET ready_notified_at = $2
		WHERE id = $1 AND ready_notified_at IS NULL
	`

	ReleaseResultReadyNotified = `
		UPDATE results
		SET ready_notified_at = NULL
		WHERE id = $1 AND ready_notified_at IS NOT NULL
	`
)

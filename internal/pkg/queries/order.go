package queries

const (
	InsertOrder = `
		INSERT INTO orders (
			id,
			order_number,
			patient_id,
			status,
			payment_status,
			notes,
			created_at,
			updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	GetOrderByID = `
		SELECT
			id,
			order_number,
			patient_id,
			status,
			payment_status,
			notes,
			collected_by,
			collected_at,
			submitted_at,
			completed_at,
			cancelled_at,
			created_at,
			updated_at
		FROM orders
		WHERE id = $1
	`

	GetOrderByOrderNumber = `
		SELECT
			id,
			order_number,
			patient_id,
			status,
			payment_status,
			notes,
			collected_by,
			collected_at,
			submitted_at,
			completed_at,
			cancelled_at,
			created_at,
			updated_at
		FROM orders
		WHERE order_number = $1
	`

	GetOrdersByPatientID = `
		SELECT
			id,
			order_number,
			patient_id,
			status,
			payment_status,
			notes,
			collected_by,
			collected_at,
			submitted_at,
			completed_at,
			cancelled_at,
			created_at,
			updated_at
		FROM orders
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	CountOrdersByPatientID = `
		SELECT COUNT(*)
		FROM orders
		WHERE patient_id = $1
	`

	UpdateOrderDetails = `
		UPDATE orders
		SET notes = $2,
			updated_at = $3
		WHERE id = $1
	`

	// UpdateOrderStatusGuarded compares against the expected previous status so
	// two racing transitions cannot both apply.
	UpdateOrderStatusGuarded = `
		UPDATE orders
		SET status = $2,
			payment_status = $3,
			collected_by = $4,
			collected_at = $5,
			submitted_at = $6,
			completed_at = $7,
			cancelled_at = $8,
			updated_at = $9
		WHERE id = $1 AND status = $10
	`
)

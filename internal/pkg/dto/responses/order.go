package responses

import "time"

type Order struct {
	ID            string     `json:"id"`
	OrderNumber   string     `json:"order_number"`
	PatientID     string     `json:"patient_id"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	Notes         string     `json:"notes,omitempty"`
	CollectedBy   *string    `json:"collected_by,omitempty"`
	CollectedAt   *time.Time `json:"collected_at,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

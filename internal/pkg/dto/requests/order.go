package requests

type Pagination struct {
	Page     int
	PageSize int
}

type CreateOrder struct {
	Notes string `json:"notes" validate:"max=500"`
}

type UpdateOrder struct {
	Notes string `json:"notes" validate:"max=500"`
}

type TransitionOrder struct {
	Action string `json:"action" validate:"required,oneof=payment_confirmed collect submit_to_lab complete cancel"`
}

package requests

type EmailPayload struct {
	Subject string   `json:"subject"`
	From    string   `json:"from"`
	To      []string `json:"to"`
	Body    string   `json:"body"`
	// Kind distinguishes notification templates for the delivery worker.
	Kind string `json:"kind"`
	// OrderNumber ties the notification back to its order for logging.
	OrderNumber string `json:"order_number,omitempty"`
}

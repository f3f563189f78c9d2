package contracts

import (
	"context"
	"labtrace-service/internal/pkg/dto/requests"
)

// MailerService is the outbound notification sender collaborator. PublishEmail
// hands the payload to the delivery queue; SendBasicEmail talks to the SMTP
// relay directly and is what the delivery worker ultimately calls.
type MailerService interface {
	PublishEmail(ctx context.Context, request *requests.EmailPayload) error
	// SendBasicEmail delivers one message to every recipient in a single
	// SMTP session. The context deadline bounds the whole exchange.
	SendBasicEmail(ctx context.Context, to []string, subject, body string) error
	ValidateEmail(email string) bool
}

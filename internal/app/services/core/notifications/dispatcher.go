package notifications

import (
	"context"
	"fmt"

	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Dispatcher turns outbox events into queued email notifications. Every rule
// that decides to stay silent still counts as a successful dispatch so the
// event is marked processed and never retried.
type Dispatcher struct {
	OrderRepository  contracts.OrderRepository
	ResultRepository contracts.ResultRepository
	UserRepository   contracts.UserRepository
	MailerService    contracts.MailerService
	Log              *zap.Logger
}

func NewDispatcher(
	orderRepository contracts.OrderRepository,
	resultRepository contracts.ResultRepository,
	userRepository contracts.UserRepository,
	mailerService contracts.MailerService,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		OrderRepository:  orderRepository,
		ResultRepository: resultRepository,
		UserRepository:   userRepository,
		MailerService:    mailerService,
		Log:              log,
	}
}

// DispatchEvent applies the notification rules for a single outbox event. A
// nil return means the event is fully handled, including the cases where the
// rules suppress the notification.
func (d *Dispatcher) DispatchEvent(ctx context.Context, event models.OutboxEvent) error {
	switch event.EventType {
	case models.EventOrderStatusChanged:
		return d.dispatchOrderStatusChanged(ctx, event)
	case models.EventResultReceived:
		return d.dispatchResultReceived(ctx, event)
	case models.EventResultReviewed:
		return d.dispatchResultReviewed(ctx, event)
	default:
		d.Log.Warn("Dispatcher.DispatchEvent unknown event type",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.EventType)))
		return nil
	}
}

func (d *Dispatcher) dispatchOrderStatusChanged(ctx context.Context, event models.OutboxEvent) error {
	var payload models.OrderStatusChangedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	// Only the payment confirmation edge produces a patient-facing email.
	// Cancellations and internal progress transitions stay silent.
	if payload.NewStatus != models.OrderStatusAwaitingCollection {
		return nil
	}

	order, err := d.OrderRepository.FindByID(ctx, payload.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		d.Log.Warn("Dispatcher.dispatchOrderStatusChanged order missing",
			zap.String("event_id", event.ID),
			zap.String("order_id", payload.OrderID))
		return nil
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		d.Log.Info("Dispatcher.dispatchOrderStatusChanged suppressed, payment not confirmed",
			zap.String("order_id", order.ID),
			zap.String("payment_status", string(order.PaymentStatus)))
		return nil
	}

	return d.publishToPatient(ctx, order,
		constvars.NotificationKindOrderConfirmation,
		fmt.Sprintf(constvars.EmailOrderConfirmationSubject, order.OrderNumber),
		fmt.Sprintf(constvars.EmailBodyOrderConfirmation, order.OrderNumber))
}

func (d *Dispatcher) dispatchResultReceived(ctx context.Context, event models.OutboxEvent) error {
	var payload models.ResultEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	// Critical results are held until a reviewer signs off. The reviewed
	// event carries the notification instead.
	if payload.HasCriticalValues {
		d.Log.Info("Dispatcher.dispatchResultReceived held pending review",
			zap.String("result_id", payload.ResultID),
			zap.String("order_id", payload.OrderID))
		return nil
	}

	return d.notifyResultsReady(ctx, event, payload)
}

func (d *Dispatcher) dispatchResultReviewed(ctx context.Context, event models.OutboxEvent) error {
	var payload models.ResultEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}
	return d.notifyResultsReady(ctx, event, payload)
}

func (d *Dispatcher) notifyResultsReady(ctx context.Context, event models.OutboxEvent, payload models.ResultEventPayload) error {
	order, err := d.OrderRepository.FindByID(ctx, payload.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		d.Log.Warn("Dispatcher.notifyResultsReady order missing",
			zap.String("result_id", payload.ResultID),
			zap.String("order_id", payload.OrderID))
		return nil
	}

	// Both the received and the reviewed event route here; whichever claims
	// the stamp first carries the notification, the other stays silent.
	claimed, err := d.ResultRepository.MarkReadyNotified(ctx, payload.ResultID)
	if err != nil {
		return err
	}
	if !claimed {
		d.Log.Info("Dispatcher.notifyResultsReady already claimed",
			zap.String("result_id", payload.ResultID),
			zap.String("event_id", event.ID))
		return nil
	}

	err = d.publishToPatient(ctx, order,
		constvars.NotificationKindResultsReady,
		fmt.Sprintf(constvars.EmailResultsReadySubject, order.OrderNumber),
		fmt.Sprintf(constvars.EmailBodyResultsReady, order.OrderNumber))
	if err != nil {
		// Hand the claim back so the outbox retry can carry the
		// notification instead of finding the stamp already taken.
		if releaseErr := d.ResultRepository.ReleaseReadyNotified(ctx, payload.ResultID); releaseErr != nil {
			d.Log.Error("Dispatcher.notifyResultsReady claim release failed, operator attention required",
				zap.String("result_id", payload.ResultID),
				zap.String("event_id", event.ID),
				zap.Error(releaseErr))
		}
		return err
	}
	return nil
}

func (d *Dispatcher) publishToPatient(ctx context.Context, order *models.Order, kind, subject, body string) error {
	user, err := d.UserRepository.FindByID(ctx, order.PatientID)
	if err != nil {
		return err
	}
	if user == nil || !d.MailerService.ValidateEmail(user.Email) {
		d.Log.Warn("Dispatcher.publishToPatient no deliverable address",
			zap.String("order_id", order.ID),
			zap.String("patient_id", order.PatientID))
		return nil
	}

	email := &requests.EmailPayload{
		Subject:     subject,
		To:          []string{user.Email},
		Body:        body,
		Kind:        kind,
		OrderNumber: order.OrderNumber,
	}
	if err := d.MailerService.PublishEmail(ctx, email); err != nil {
		return err
	}

	d.Log.Info("Dispatcher.publishToPatient notification queued",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("kind", kind))
	return nil
}

package notifqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/exceptions"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DeliveryQueueName   = "notification_delivery_queue"
	DeadLetterQueueName = "notification_delivery_dlq"
)

// NotificationQueueMessage is the payload stored in RabbitMQ. FailedCount
// travels with the message so retry accounting survives worker restarts.
type NotificationQueueMessage struct {
	ID          string                `json:"id"`
	Email       requests.EmailPayload `json:"email"`
	FailedCount int                   `json:"failed_count"`
}

// Service manages interactions with the RabbitMQ delivery queues.
type Service struct {
	ch       *amqp.Channel
	log      *zap.Logger
	prefetch int
	confirms chan amqp.Confirmation
	mu       sync.Mutex
}

// NewService initializes the queue service, declares durable queues, enables confirms, and sets QoS.
func NewService(conn *amqp.Connection, log *zap.Logger, prefetch int) (*Service, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		DeliveryQueueName, // name
		true,              // durable
		false,             // autoDelete
		false,             // exclusive
		false,             // noWait
		nil,               // args
	)
	if err != nil {
		return nil, err
	}

	_, err = ch.QueueDeclare(
		DeadLetterQueueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	if prefetch <= 0 {
		prefetch = 1
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return nil, err
	}

	if err := ch.Confirm(false); err != nil {
		return nil, err
	}

	svc := &Service{
		ch:       ch,
		log:      log,
		prefetch: prefetch,
		confirms: ch.NotifyPublish(make(chan amqp.Confirmation, 1)),
	}

	return svc, nil
}

// EnqueueInput defines input for enqueue operation.
type EnqueueInput struct {
	Message NotificationQueueMessage
}

// EnqueueOutput defines output for enqueue.
type EnqueueOutput struct{}

// EnqueueToDLQInput defines input for DLQ enqueue operation.
type EnqueueToDLQInput struct {
	Message NotificationQueueMessage
}

// EnqueueToDLQOutput defines output for DLQ enqueue.
type EnqueueToDLQOutput struct{}

// ReenqueueInput defines input for reenqueueing a modified message back to the queue tail.
type ReenqueueInput struct {
	Message NotificationQueueMessage
}

// ReenqueueOutput defines output for reenqueue.
type ReenqueueOutput struct{}

// FetchNInput specifies the maximum number of messages to fetch.
type FetchNInput struct {
	Max int
}

// QueuedItem represents a fetched delivery and its decoded payload.
type QueuedItem struct {
	DeliveryTag uint64
	Message     NotificationQueueMessage
}

// FetchNOutput returns up to N messages.
type FetchNOutput struct {
	Items []QueuedItem
}

// AckMessageInput acknowledges a message so it is removed from the queue.
type AckMessageInput struct {
	DeliveryTag uint64
}

// AckMessageOutput is empty.
type AckMessageOutput struct{}

// Enqueue publishes a message to the delivery queue with persistence and waits for confirm.
func (s *Service) Enqueue(ctx context.Context, in *EnqueueInput) (*EnqueueOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("NotifQueue.Enqueue called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if err := s.publish(ctx, DeliveryQueueName, in.Message); err != nil {
		return nil, err
	}
	return &EnqueueOutput{}, nil
}

// Reenqueue publishes the (possibly modified) message to the tail of the delivery queue and confirms.
func (s *Service) Reenqueue(ctx context.Context, in *ReenqueueInput) (*ReenqueueOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("NotifQueue.Reenqueue called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if err := s.publish(ctx, DeliveryQueueName, in.Message); err != nil {
		return nil, err
	}
	return &ReenqueueOutput{}, nil
}

// EnqueueToDeadQueue publishes the message to the DLQ after delivery attempts are exhausted.
func (s *Service) EnqueueToDeadQueue(ctx context.Context, in *EnqueueToDLQInput) (*EnqueueToDLQOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("NotifQueue.EnqueueToDeadQueue called", zap.String(constvars.LoggingRequestIDKey, requestID))

	if err := s.publish(ctx, DeadLetterQueueName, in.Message); err != nil {
		return nil, err
	}
	return &EnqueueToDLQOutput{}, nil
}

// FetchN retrieves up to N messages using basic.get without auto-ack.
func (s *Service) FetchN(ctx context.Context, in *FetchNInput) (*FetchNOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("NotifQueue.FetchN called", zap.String(constvars.LoggingRequestIDKey, requestID))

	n := in.Max
	if n <= 0 {
		n = 1
	}
	items := make([]QueuedItem, 0, n)

	for i := 0; i < n; i++ {
		d, ok, err := s.ch.Get(DeliveryQueueName, false)
		if err != nil {
			return nil, exceptions.ErrRabbitMQFetch(err)
		}
		if !ok {
			break
		}
		var payload NotificationQueueMessage
		if err := json.Unmarshal(d.Body, &payload); err != nil {
			// Invalid JSON goes straight to DLQ to avoid a poison message loop.
			_ = d.Ack(false)
			_ = s.publishRaw(ctx, DeadLetterQueueName, d.Body)
			continue
		}
		items = append(items, QueuedItem{DeliveryTag: d.DeliveryTag, Message: payload})
	}

	return &FetchNOutput{Items: items}, nil
}

// AckMessage acknowledges a message by delivery tag.
func (s *Service) AckMessage(ctx context.Context, in *AckMessageInput) (*AckMessageOutput, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	s.log.Info("NotifQueue.AckMessage called", zap.String(constvars.LoggingRequestIDKey, requestID))
	if err := s.ch.Ack(in.DeliveryTag, false); err != nil {
		return nil, err
	}
	return &AckMessageOutput{}, nil
}

func (s *Service) publish(ctx context.Context, queue string, message NotificationQueueMessage) error {
	body, err := json.Marshal(message)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}
	return s.publishRaw(ctx, queue, body)
}

func (s *Service) publishRaw(ctx context.Context, queue string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := amqp.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp.Persistent,
	}

	if err := s.ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return exceptions.ErrRabbitMQPublish(err)
	}

	select {
	case confirmed := <-s.confirms:
		if !confirmed.Ack {
			return exceptions.ErrRabbitMQNotConfirmed(fmt.Errorf("publish to %s not confirmed", queue))
		}
	case <-ctx.Done():
		return exceptions.ErrRabbitMQPublish(ctx.Err())
	}
	return nil
}

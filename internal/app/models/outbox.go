package models

import (
	"encoding/json"
	"time"
)

type OutboxEventType string

const (
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
	EventResultReceived     OutboxEventType = "result_received"
	EventResultReviewed     OutboxEventType = "result_reviewed"
)

type OutboxEventStatus string

const (
	OutboxStatusPending   OutboxEventStatus = "pending"
	OutboxStatusProcessed OutboxEventStatus = "processed"
	OutboxStatusDead      OutboxEventStatus = "dead"
)

// OutboxEvent is appended in the same transaction as the entity mutation that
// produced it and consumed asynchronously by the notification dispatcher.
type OutboxEvent struct {
	ID          string            `json:"id"`
	EventType   OutboxEventType   `json:"event_type"`
	OrderID     string            `json:"order_id"`
	ResultID    *string           `json:"result_id,omitempty"`
	Payload     json.RawMessage   `json:"payload"`
	Status      OutboxEventStatus `json:"status"`
	Attempts    int               `json:"attempts"`
	LastError   string            `json:"last_error,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ProcessedAt *time.Time        `json:"processed_at,omitempty"`
}

// OrderStatusChangedPayload describes a lifecycle transition.
type OrderStatusChangedPayload struct {
	OrderID        string      `json:"order_id"`
	OrderNumber    string      `json:"order_number"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	Action         OrderAction `json:"action"`
	ActorID        string      `json:"actor_id"`
}

// ResultEventPayload describes result-received and result-reviewed events.
type ResultEventPayload struct {
	ResultID          string `json:"result_id"`
	OrderID           string `json:"order_id"`
	ExternalRef       string `json:"external_ref"`
	HasCriticalValues bool   `json:"has_critical_values"`
}

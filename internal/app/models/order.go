package models

import (
	"time"
)

type OrderStatus string

const (
	OrderStatusPendingPayment     OrderStatus = "pending_payment"
	OrderStatusAwaitingCollection OrderStatus = "awaiting_collection"
	OrderStatusCollected          OrderStatus = "collected"
	OrderStatusSubmittedToLab     OrderStatus = "submitted_to_lab"
	OrderStatusCompleted          OrderStatus = "completed"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

type OrderPaymentStatus string

const (
	PaymentStatusUnpaid   OrderPaymentStatus = "unpaid"
	PaymentStatusPaid     OrderPaymentStatus = "paid"
	PaymentStatusRefunded OrderPaymentStatus = "refunded"
)

type OrderAction string

const (
	OrderActionConfirmPayment OrderAction = "payment_confirmed"
	OrderActionCollect        OrderAction = "collect"
	OrderActionSubmitToLab    OrderAction = "submit_to_lab"
	OrderActionComplete       OrderAction = "complete"
	OrderActionCancel         OrderAction = "cancel"
)

type Order struct {
	ID            string             `json:"id"`
	OrderNumber   string             `json:"order_number"`
	PatientID     string             `json:"patient_id"`
	Status        OrderStatus        `json:"status"`
	PaymentStatus OrderPaymentStatus `json:"payment_status"`
	Notes         string             `json:"notes,omitempty"`
	CollectedBy   *string            `json:"collected_by,omitempty"`
	CollectedAt   *time.Time         `json:"collected_at,omitempty"`
	SubmittedAt   *time.Time         `json:"submitted_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CancelledAt   *time.Time         `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// CanBeCancelled reports whether the order is still in a cancellable state.
// Once a specimen has been submitted to the lab the order can no longer be
// withdrawn.
func (o *Order) CanBeCancelled() bool {
	switch o.Status {
	case OrderStatusPendingPayment, OrderStatusAwaitingCollection, OrderStatusCollected:
		return true
	default:
		return false
	}
}

// CanBeSubmittedToLab requires a collected specimen.
func (o *Order) CanBeSubmittedToLab() bool {
	return o.Status == OrderStatusCollected
}

// CanBePrinted reports whether a specimen label may still be printed.
func (o *Order) CanBePrinted() bool {
	return o.Status == OrderStatusAwaitingCollection || o.Status == OrderStatusCollected
}

func (o *Order) IsOwnedBy(userID string) bool {
	return o.PatientID == userID
}

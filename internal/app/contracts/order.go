package contracts

import (
	"context"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/dto/responses"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	FindByPatientID(ctx context.Context, patientID string, limit, offset int) ([]models.Order, error)
	CountByPatientID(ctx context.Context, patientID string) (int, error)
	UpdateDetails(ctx context.Context, order *models.Order) (*models.Order, error)
	// ApplyTransition writes the new status and appends the lifecycle event in
	// one transaction, guarded by a compare on the expected previous status.
	// It reports zero rows updated as a concurrent-update failure.
	ApplyTransition(ctx context.Context, order *models.Order, previousStatus models.OrderStatus, event *models.OutboxEvent) (*models.Order, error)
}

type OrderUsecase interface {
	CreateOrder(ctx context.Context, actor models.Actor, request *requests.CreateOrder) (*responses.Order, error)
	GetOrderByID(ctx context.Context, actor models.Actor, orderID string) (*responses.Order, error)
	ListOrdersForActor(ctx context.Context, actor models.Actor, pagination *requests.Pagination) ([]responses.Order, int, error)
	UpdateOrder(ctx context.Context, actor models.Actor, orderID string, request *requests.UpdateOrder) (*responses.Order, error)
	// Transition validates the lifecycle edge, the actor's authorization, and
	// the guard conditions, then applies the transition atomically with its
	// outbox event.
	Transition(ctx context.Context, actor models.Actor, orderID string, action models.OrderAction) (*responses.Order, error)
	// CheckLabelPrintable authorizes label printing without mutating state.
	CheckLabelPrintable(ctx context.Context, actor models.Actor, orderID string) error
}

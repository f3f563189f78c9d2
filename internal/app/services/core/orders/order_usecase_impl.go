package orders

import (
	"context"
	"fmt"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/app/services/core/authz"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/dto/responses"
	"labtrace-service/internal/pkg/exceptions"
	"labtrace-service/internal/pkg/utils"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// transitionEdges is the lifecycle graph. A missing (status, action) pair is
// an invalid transition, full stop.
var transitionEdges = map[models.OrderStatus]map[models.OrderAction]models.OrderStatus{
	models.OrderStatusPendingPayment: {
		models.OrderActionConfirmPayment: models.OrderStatusAwaitingCollection,
		models.OrderActionCancel:         models.OrderStatusCancelled,
	},
	models.OrderStatusAwaitingCollection: {
		models.OrderActionCollect: models.OrderStatusCollected,
		models.OrderActionCancel:  models.OrderStatusCancelled,
	},
	models.OrderStatusCollected: {
		models.OrderActionSubmitToLab: models.OrderStatusSubmittedToLab,
		models.OrderActionCancel:      models.OrderStatusCancelled,
	},
	models.OrderStatusSubmittedToLab: {
		models.OrderActionComplete: models.OrderStatusCompleted,
	},
}

// actionPermissions maps each lifecycle action to its authorization check.
var actionPermissions = map[models.OrderAction]authz.Action{
	models.OrderActionConfirmPayment: authz.ActionConfirmPayment,
	models.OrderActionCollect:        authz.ActionCollectSpecimen,
	models.OrderActionSubmitToLab:    authz.ActionSubmitToLab,
	models.OrderActionComplete:       authz.ActionCompleteOrder,
	models.OrderActionCancel:         authz.ActionCancelOrder,
}

type orderUsecase struct {
	OrderRepository contracts.OrderRepository
	LockerService   contracts.LockerService
	AuthzEngine     *authz.Engine
	Log             *zap.Logger
}

var (
	orderUsecaseInstance contracts.OrderUsecase
	onceOrderUsecase     sync.Once
)

func NewOrderUsecase(
	orderRepository contracts.OrderRepository,
	lockerService contracts.LockerService,
	authzEngine *authz.Engine,
	logger *zap.Logger,
) contracts.OrderUsecase {
	onceOrderUsecase.Do(func() {
		orderUsecaseInstance = &orderUsecase{
			OrderRepository: orderRepository,
			LockerService:   lockerService,
			AuthzEngine:     authzEngine,
			Log:             logger,
		}
	})

	return orderUsecaseInstance
}

func (uc *orderUsecase) CreateOrder(ctx context.Context, actor models.Actor, request *requests.CreateOrder) (*responses.Order, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("orderUsecase.CreateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	if !uc.AuthzEngine.AllowOrderAction(actor, authz.ActionCreateOrder, nil) {
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	now := time.Now().UTC()
	orderNumber, err := utils.GenerateOrderNumber(now)
	if err != nil {
		return nil, err
	}
	order := &models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   orderNumber,
		PatientID:     actor.ID,
		Status:        models.OrderStatusPendingPayment,
		PaymentStatus: models.PaymentStatusUnpaid,
		Notes:         request.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := uc.OrderRepository.CreateOrder(ctx, order)
	if err != nil {
		uc.Log.Error("orderUsecase.CreateOrder error inserting order",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "order_created", requestID,
		zap.String("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
	)

	return buildOrderResponse(created), nil
}

func (uc *orderUsecase) GetOrderByID(ctx context.Context, actor models.Actor, orderID string) (*responses.Order, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Debug("orderUsecase.GetOrderByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("order_id", orderID),
	)

	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrOrderNotFound(nil)
	}

	if !uc.AuthzEngine.AllowOrderAction(actor, authz.ActionViewOrder, order) {
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	return buildOrderResponse(order), nil
}

func (uc *orderUsecase) ListOrdersForActor(ctx context.Context, actor models.Actor, pagination *requests.Pagination) ([]responses.Order, int, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Debug("orderUsecase.ListOrdersForActor called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
	)

	offset := (pagination.Page - 1) * pagination.PageSize
	orders, err := uc.OrderRepository.FindByPatientID(ctx, actor.ID, pagination.PageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	total, err := uc.OrderRepository.CountByPatientID(ctx, actor.ID)
	if err != nil {
		return nil, 0, err
	}

	result := make([]responses.Order, 0, len(orders))
	for i := range orders {
		result = append(result, *buildOrderResponse(&orders[i]))
	}
	return result, total, nil
}

func (uc *orderUsecase) UpdateOrder(ctx context.Context, actor models.Actor, orderID string, request *requests.UpdateOrder) (*responses.Order, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("orderUsecase.UpdateOrder called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("order_id", orderID),
	)

	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrOrderNotFound(nil)
	}

	if !uc.AuthzEngine.AllowOrderAction(actor, authz.ActionUpdateOrder, order) {
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	order.Notes = request.Notes
	updated, err := uc.OrderRepository.UpdateDetails(ctx, order)
	if err != nil {
		return nil, err
	}
	return buildOrderResponse(updated), nil
}

// Transition serializes writers per order id, revalidates against the freshly
// loaded row under the lock, and applies the state write together with its
// lifecycle event in one transaction. The guarded update keeps two racing
// transitions from both committing even if the lock expires mid-flight.
func (uc *orderUsecase) Transition(ctx context.Context, actor models.Actor, orderID string, action models.OrderAction) (*responses.Order, error) {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Info("orderUsecase.Transition called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("order_id", orderID),
		zap.String("action", string(action)),
	)

	lockKey := fmt.Sprintf(constvars.RedisOrderLockKeyFormat, orderID)
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, 15*time.Second)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrOrderLockNotAcquired(nil)
	}
	defer func() {
		if unlockErr := uc.LockerService.Unlock(ctx, lockKey, lockValue); unlockErr != nil {
			uc.Log.Warn("orderUsecase.Transition failed releasing lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String("order_id", orderID),
				zap.Error(unlockErr),
			)
		}
	}()

	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, exceptions.ErrOrderNotFound(nil)
	}

	previousStatus := order.Status
	nextStatus, ok := transitionEdges[previousStatus][action]
	if !ok {
		return nil, exceptions.ErrOrderInvalidTransition(nil, string(previousStatus), string(action))
	}

	permission, ok := actionPermissions[action]
	if !ok {
		return nil, exceptions.ErrOrderInvalidTransition(nil, string(previousStatus), string(action))
	}
	if !uc.AuthzEngine.AllowOrderAction(actor, permission, order) {
		utils.LogSecurityEvent(uc.Log, "transition_denied", requestID, "warning",
			zap.String("order_id", orderID),
			zap.String("actor_id", actor.ID),
			zap.String("action", string(action)),
		)
		return nil, exceptions.ErrNotAuthorized(nil)
	}

	if err := checkTransitionGuards(order, action); err != nil {
		return nil, err
	}

	applyAction(order, actor, action, nextStatus)

	payload, err := json.Marshal(models.OrderStatusChangedPayload{
		OrderID:        order.ID,
		OrderNumber:    order.OrderNumber,
		PreviousStatus: previousStatus,
		NewStatus:      nextStatus,
		Action:         action,
		ActorID:        actor.ID,
	})
	if err != nil {
		return nil, exceptions.ErrCannotMarshalJSON(err)
	}

	event := &models.OutboxEvent{
		ID:        uuid.NewString(),
		EventType: models.EventOrderStatusChanged,
		OrderID:   order.ID,
		Payload:   payload,
		Status:    models.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	updated, err := uc.OrderRepository.ApplyTransition(ctx, order, previousStatus, event)
	if err != nil {
		uc.Log.Error("orderUsecase.Transition error applying transition",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "order_status_changed", requestID,
		zap.String("order_id", updated.ID),
		zap.String("previous_status", string(previousStatus)),
		zap.String("new_status", string(updated.Status)),
	)

	return buildOrderResponse(updated), nil
}

func (uc *orderUsecase) CheckLabelPrintable(ctx context.Context, actor models.Actor, orderID string) error {
	requestID := utils.RequestIDFromContext(ctx)
	uc.Log.Debug("orderUsecase.CheckLabelPrintable called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String("order_id", orderID),
	)

	order, err := uc.OrderRepository.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return exceptions.ErrOrderNotFound(nil)
	}

	if !uc.AuthzEngine.AllowOrderAction(actor, authz.ActionPrintLabel, order) {
		return exceptions.ErrNotAuthorized(nil)
	}
	return nil
}

// checkTransitionGuards enforces preconditions beyond graph membership.
func checkTransitionGuards(order *models.Order, action models.OrderAction) error {
	switch action {
	case models.OrderActionCollect:
		if order.PaymentStatus != models.PaymentStatusPaid {
			return exceptions.ErrOrderPreconditionNotMet(nil, "payment_not_confirmed")
		}
	case models.OrderActionSubmitToLab:
		if !order.CanBeSubmittedToLab() {
			return exceptions.ErrOrderPreconditionNotMet(nil, "specimen_not_collected")
		}
	case models.OrderActionCancel:
		if !order.CanBeCancelled() {
			return exceptions.ErrOrderPreconditionNotMet(nil, "order_not_cancellable")
		}
	}
	return nil
}

// applyAction mutates the in-memory order for the accepted action. The write
// itself stays guarded by the repository compare on the previous status.
func applyAction(order *models.Order, actor models.Actor, action models.OrderAction, nextStatus models.OrderStatus) {
	now := time.Now().UTC()
	order.Status = nextStatus

	switch action {
	case models.OrderActionConfirmPayment:
		order.PaymentStatus = models.PaymentStatusPaid
	case models.OrderActionCollect:
		actorID := actor.ID
		order.CollectedBy = &actorID
		order.CollectedAt = &now
	case models.OrderActionSubmitToLab:
		order.SubmittedAt = &now
	case models.OrderActionComplete:
		order.CompletedAt = &now
	case models.OrderActionCancel:
		order.CancelledAt = &now
		if order.PaymentStatus == models.PaymentStatusPaid {
			order.PaymentStatus = models.PaymentStatusRefunded
		}
	}
}

func buildOrderResponse(order *models.Order) *responses.Order {
	return &responses.Order{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		PatientID:     order.PatientID,
		Status:        string(order.Status),
		PaymentStatus: string(order.PaymentStatus),
		Notes:         order.Notes,
		CollectedBy:   order.CollectedBy,
		CollectedAt:   order.CollectedAt,
		SubmittedAt:   order.SubmittedAt,
		CompletedAt:   order.CompletedAt,
		CancelledAt:   order.CancelledAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

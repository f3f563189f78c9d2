package authz

import (
	"labtrace-service/internal/app/models"
)

// Action identifies an operation an actor wants to perform on an order or a
// result. The engine evaluates each (actor, action, entity) triple with no
// side effects and no I/O; callers must treat a deny as a hard stop.
type Action string

const (
	ActionCreateOrder     Action = "order:create"
	ActionViewOrder       Action = "order:view"
	ActionUpdateOrder     Action = "order:update"
	ActionCancelOrder     Action = "order:cancel"
	ActionConfirmPayment  Action = "order:confirm_payment"
	ActionCollectSpecimen Action = "order:collect"
	ActionSubmitToLab     Action = "order:submit_to_lab"
	ActionCompleteOrder   Action = "order:complete"
	ActionPrintLabel      Action = "order:print_label"

	ActionViewResult   Action = "result:view"
	ActionReviewResult Action = "result:review"
	ActionPurgeResult  Action = "result:purge"
)

// Engine is a stateless decision-table evaluator. All capability checks go
// through it rather than being scattered across usecases.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// AllowOrderAction evaluates the order decision table. The order may be nil
// only for ActionCreateOrder, which is open to any authenticated actor.
func (e *Engine) AllowOrderAction(actor models.Actor, action Action, order *models.Order) bool {
	switch action {
	case ActionCreateOrder:
		return actor.ID != ""
	case ActionViewOrder:
		return order.IsOwnedBy(actor.ID) || actor.IsAdmin()
	case ActionUpdateOrder:
		return (order.IsOwnedBy(actor.ID) && order.Status == models.OrderStatusPendingPayment) || actor.IsAdmin()
	case ActionCancelOrder:
		return (order.IsOwnedBy(actor.ID) || actor.IsAdmin()) && order.CanBeCancelled()
	case ActionConfirmPayment:
		return actor.IsSystem() || actor.IsAdmin()
	case ActionCollectSpecimen:
		return actor.CanCollectSpecimens()
	case ActionSubmitToLab:
		return actor.CanCollectSpecimens() && order.CanBeSubmittedToLab()
	case ActionCompleteOrder:
		return actor.IsSystem() || actor.IsAdmin()
	case ActionPrintLabel:
		return actor.CanCollectSpecimens() && order.CanBePrinted()
	default:
		return false
	}
}

// AllowResultAction evaluates the result decision table. Admins and reviewers
// bypass the critical-result gate; the owning patient never does while the
// result is critical and unreviewed.
func (e *Engine) AllowResultAction(actor models.Actor, action Action, result *models.Result, parentOrder *models.Order) bool {
	switch action {
	case ActionViewResult:
		if actor.IsAdmin() || actor.CanReviewResults() {
			return true
		}
		return parentOrder.IsOwnedBy(actor.ID) && !result.IsGated()
	case ActionReviewResult:
		return actor.CanReviewResults()
	case ActionPurgeResult:
		return actor.IsAdmin()
	default:
		return false
	}
}

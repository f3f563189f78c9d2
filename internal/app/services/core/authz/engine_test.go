package authz

import (
	"testing"

	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"

	"github.com/stretchr/testify/assert"
)

var (
	patient = models.Actor{ID: "patient-123", Roles: []string{constvars.RoleTypePatient}}
	other   = models.Actor{ID: "patient-456", Roles: []string{constvars.RoleTypePatient}}
	tech    = models.Actor{ID: "tech-1", Roles: []string{constvars.RoleTypeTechnician}}
	rev     = models.Actor{ID: "rev-1", Roles: []string{constvars.RoleTypeReviewer}}
	admin   = models.Actor{ID: "admin-1", Roles: []string{constvars.RoleTypeAdmin}}
)

func orderFor(owner string, status models.OrderStatus) *models.Order {
	return &models.Order{ID: "order-1", PatientID: owner, Status: status}
}

func TestAllowOrderAction(t *testing.T) {
	engine := NewEngine()

	t.Run("View Order", func(t *testing.T) {
		order := orderFor(patient.ID, models.OrderStatusAwaitingCollection)

		assert.True(t, engine.AllowOrderAction(patient, ActionViewOrder, order), "owner should view their own order")
		assert.False(t, engine.AllowOrderAction(other, ActionViewOrder, order), "non-owner should not view the order")
		assert.True(t, engine.AllowOrderAction(admin, ActionViewOrder, order), "admin should view any order")
	})

	t.Run("Create Order", func(t *testing.T) {
		assert.True(t, engine.AllowOrderAction(patient, ActionCreateOrder, nil), "any authenticated actor may create")
		assert.False(t, engine.AllowOrderAction(models.Actor{}, ActionCreateOrder, nil), "anonymous actor may not create")
	})

	t.Run("Update Order", func(t *testing.T) {
		pending := orderFor(patient.ID, models.OrderStatusPendingPayment)
		awaiting := orderFor(patient.ID, models.OrderStatusAwaitingCollection)

		assert.True(t, engine.AllowOrderAction(patient, ActionUpdateOrder, pending), "owner may update while pending payment")
		assert.False(t, engine.AllowOrderAction(patient, ActionUpdateOrder, awaiting), "owner may not update after payment")
		assert.True(t, engine.AllowOrderAction(admin, ActionUpdateOrder, awaiting), "admin may update regardless of state")
		assert.False(t, engine.AllowOrderAction(other, ActionUpdateOrder, pending), "non-owner may not update")
	})

	t.Run("Cancel Order", func(t *testing.T) {
		collected := orderFor(patient.ID, models.OrderStatusCollected)
		submitted := orderFor(patient.ID, models.OrderStatusSubmittedToLab)

		assert.True(t, engine.AllowOrderAction(patient, ActionCancelOrder, collected), "owner may cancel a collected order")
		assert.False(t, engine.AllowOrderAction(patient, ActionCancelOrder, submitted), "no one may cancel after lab submission")
		assert.False(t, engine.AllowOrderAction(admin, ActionCancelOrder, submitted), "admin override does not beat the cancellable guard")
		assert.True(t, engine.AllowOrderAction(admin, ActionCancelOrder, collected), "admin may cancel for the owner")
		assert.False(t, engine.AllowOrderAction(other, ActionCancelOrder, collected), "non-owner may not cancel")
	})

	t.Run("Collect And Submit", func(t *testing.T) {
		awaiting := orderFor(patient.ID, models.OrderStatusAwaitingCollection)
		collected := orderFor(patient.ID, models.OrderStatusCollected)

		assert.True(t, engine.AllowOrderAction(tech, ActionCollectSpecimen, awaiting), "technician may collect")
		assert.False(t, engine.AllowOrderAction(patient, ActionCollectSpecimen, awaiting), "patient may not collect")
		assert.True(t, engine.AllowOrderAction(admin, ActionCollectSpecimen, awaiting), "admin may collect")

		assert.True(t, engine.AllowOrderAction(tech, ActionSubmitToLab, collected), "technician may submit a collected order")
		assert.False(t, engine.AllowOrderAction(tech, ActionSubmitToLab, awaiting), "submission requires a collected specimen")
		assert.False(t, engine.AllowOrderAction(patient, ActionSubmitToLab, collected), "patient may not submit")
	})

	t.Run("Print Label", func(t *testing.T) {
		awaiting := orderFor(patient.ID, models.OrderStatusAwaitingCollection)
		completed := orderFor(patient.ID, models.OrderStatusCompleted)

		assert.True(t, engine.AllowOrderAction(tech, ActionPrintLabel, awaiting), "technician may print before submission")
		assert.False(t, engine.AllowOrderAction(tech, ActionPrintLabel, completed), "label printing ends once the order completes")
		assert.False(t, engine.AllowOrderAction(patient, ActionPrintLabel, awaiting), "patient may not print labels")
	})

	t.Run("System Actions", func(t *testing.T) {
		pending := orderFor(patient.ID, models.OrderStatusPendingPayment)

		assert.True(t, engine.AllowOrderAction(models.SystemActor, ActionConfirmPayment, pending), "system actor confirms payments")
		assert.True(t, engine.AllowOrderAction(admin, ActionConfirmPayment, pending), "admin may confirm payments manually")
		assert.False(t, engine.AllowOrderAction(patient, ActionConfirmPayment, pending), "patient may not confirm their own payment")
		assert.True(t, engine.AllowOrderAction(models.SystemActor, ActionCompleteOrder, pending), "system actor completes orders on result arrival")
		assert.False(t, engine.AllowOrderAction(tech, ActionCompleteOrder, pending), "technician may not complete orders directly")
	})

	t.Run("Unknown Action", func(t *testing.T) {
		order := orderFor(patient.ID, models.OrderStatusCollected)
		assert.False(t, engine.AllowOrderAction(admin, Action("order:unknown"), order), "unknown actions always deny")
	})
}

func TestAllowResultAction(t *testing.T) {
	engine := NewEngine()
	order := orderFor(patient.ID, models.OrderStatusCompleted)

	t.Run("Critical Unreviewed Result Is Gated For Owner Only", func(t *testing.T) {
		result := &models.Result{ID: "result-1", OrderID: order.ID, HasCriticalValues: true, IsReviewed: false}

		assert.False(t, engine.AllowResultAction(patient, ActionViewResult, result, order), "owner is gated while critical and unreviewed")
		assert.True(t, engine.AllowResultAction(admin, ActionViewResult, result, order), "admin bypasses the gate")
		assert.True(t, engine.AllowResultAction(rev, ActionViewResult, result, order), "reviewer bypasses the gate")
		assert.False(t, engine.AllowResultAction(other, ActionViewResult, result, order), "non-owner is denied regardless of gating")
	})

	t.Run("Reviewed Critical Result Is Visible To Owner", func(t *testing.T) {
		result := &models.Result{ID: "result-1", OrderID: order.ID, HasCriticalValues: true, IsReviewed: true}
		assert.True(t, engine.AllowResultAction(patient, ActionViewResult, result, order), "review unlocks owner visibility")
	})

	t.Run("Routine Result Is Visible To Owner Immediately", func(t *testing.T) {
		result := &models.Result{ID: "result-1", OrderID: order.ID, HasCriticalValues: false, IsReviewed: false}
		assert.True(t, engine.AllowResultAction(patient, ActionViewResult, result, order), "routine results need no review")
	})

	t.Run("Review And Purge", func(t *testing.T) {
		result := &models.Result{ID: "result-1", OrderID: order.ID}

		assert.True(t, engine.AllowResultAction(rev, ActionReviewResult, result, order), "reviewer may review")
		assert.True(t, engine.AllowResultAction(admin, ActionReviewResult, result, order), "admin may review")
		assert.False(t, engine.AllowResultAction(patient, ActionReviewResult, result, order), "patient may not review")
		assert.True(t, engine.AllowResultAction(admin, ActionPurgeResult, result, order), "only admin may purge")
		assert.False(t, engine.AllowResultAction(rev, ActionPurgeResult, result, order), "reviewer may not purge")
	})
}

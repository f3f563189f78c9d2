package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/app/services/core/authz"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"
	"labtrace-service/internal/pkg/exceptions"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOrderRepository struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	events []models.OutboxEvent
}

func newFakeOrderRepository() *fakeOrderRepository {
	return &fakeOrderRepository{orders: make(map[string]*models.Order)}
}

func (f *fakeOrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *order
	f.orders[order.ID] = &copied
	return order, nil
}

func (f *fakeOrderRepository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[orderID]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeOrderRepository) FindByPatientID(ctx context.Context, patientID string, limit, offset int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []models.Order
	for _, order := range f.orders {
		if order.PatientID == patientID {
			result = append(result, *order)
		}
	}
	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeOrderRepository) CountByPatientID(ctx context.Context, patientID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, order := range f.orders {
		if order.PatientID == patientID {
			total++
		}
	}
	return total, nil
}

func (f *fakeOrderRepository) UpdateDetails(ctx context.Context, order *models.Order) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[order.ID]
	if !ok {
		return nil, exceptions.ErrOrderNotFound(nil)
	}
	stored.Notes = order.Notes
	copied := *stored
	return &copied, nil
}

func (f *fakeOrderRepository) ApplyTransition(ctx context.Context, order *models.Order, previousStatus models.OrderStatus, event *models.OutboxEvent) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.orders[order.ID]
	if !ok {
		return nil, exceptions.ErrOrderNotFound(nil)
	}
	if stored.Status != previousStatus {
		return nil, exceptions.ErrOrderConcurrentUpdate(nil)
	}
	copied := *order
	f.orders[order.ID] = &copied
	f.events = append(f.events, *event)
	result := copied
	return &result, nil
}

func (f *fakeOrderRepository) eventCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (f *fakeLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, taken := f.held[key]; taken {
		return false, "", nil
	}
	value := uuid.NewString()
	f.held[key] = value
	return true, value, nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key, lockValue string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == lockValue {
		delete(f.held, key)
	}
	return nil
}

func newTestOrderUsecase(repo contracts.OrderRepository, locker contracts.LockerService) *orderUsecase {
	return &orderUsecase{
		OrderRepository: repo,
		LockerService:   locker,
		AuthzEngine:     authz.NewEngine(),
		Log:             zap.NewNop(),
	}
}

func seedOrder(repo *fakeOrderRepository, status models.OrderStatus, paymentStatus models.OrderPaymentStatus, ownerID string) *models.Order {
	order := &models.Order{
		ID:            uuid.NewString(),
		OrderNumber:   "LAB-20260101-000001",
		PatientID:     ownerID,
		Status:        status,
		PaymentStatus: paymentStatus,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	_, _ = repo.CreateOrder(context.Background(), order)
	return order
}

var (
	testPatient = models.Actor{ID: "patient-1", Roles: []string{constvars.RoleTypePatient}}
	testTech    = models.Actor{ID: "tech-1", Roles: []string{constvars.RoleTypeTechnician}}
)

func TestTransitionPaymentConfirmed(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())
	order := seedOrder(repo, models.OrderStatusPendingPayment, models.PaymentStatusUnpaid, testPatient.ID)

	updated, err := uc.Transition(context.Background(), models.SystemActor, order.ID, models.OrderActionConfirmPayment)
	require.NoError(t, err)

	assert.Equal(t, string(models.OrderStatusAwaitingCollection), updated.Status, "payment confirmation moves the order to awaiting collection")
	assert.Equal(t, string(models.PaymentStatusPaid), updated.PaymentStatus, "payment confirmation marks the order paid")
	assert.Equal(t, 1, repo.eventCount(), "exactly one lifecycle event per successful transition")
}

func TestTransitionInvalidEdge(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())

	cases := []struct {
		name   string
		status models.OrderStatus
		action models.OrderAction
	}{
		{"collect before payment", models.OrderStatusPendingPayment, models.OrderActionCollect},
		{"submit before collection", models.OrderStatusAwaitingCollection, models.OrderActionSubmitToLab},
		{"cancel after submission", models.OrderStatusSubmittedToLab, models.OrderActionCancel},
		{"complete from terminal state", models.OrderStatusCompleted, models.OrderActionComplete},
		{"any action on cancelled", models.OrderStatusCancelled, models.OrderActionCollect},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := seedOrder(repo, tc.status, models.PaymentStatusPaid, testPatient.ID)

			_, err := uc.Transition(context.Background(), models.Actor{ID: "admin-1", Roles: []string{constvars.RoleTypeAdmin}}, order.ID, tc.action)
			require.Error(t, err)

			var customErr *exceptions.CustomError
			require.ErrorAs(t, err, &customErr)
			assert.Equal(t, constvars.StatusConflict, customErr.StatusCode)
			assert.Contains(t, customErr.DevMessage, "no edge", "missing lifecycle edges are reported as invalid transitions")

			stored, _ := repo.FindByID(context.Background(), order.ID)
			assert.Equal(t, tc.status, stored.Status, "rejected transitions never mutate the order")
			assert.Equal(t, 0, repo.eventCount(), "rejected transitions never emit events")
		})
	}
}

func TestTransitionUnauthorized(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())
	order := seedOrder(repo, models.OrderStatusAwaitingCollection, models.PaymentStatusPaid, testPatient.ID)

	_, err := uc.Transition(context.Background(), testPatient, order.ID, models.OrderActionCollect)
	require.Error(t, err)

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Equal(t, constvars.StatusForbidden, customErr.StatusCode)
	assert.Equal(t, 0, repo.eventCount())

	stored, _ := repo.FindByID(context.Background(), order.ID)
	assert.Equal(t, models.OrderStatusAwaitingCollection, stored.Status)
}

func TestTransitionGuardPaymentNotConfirmed(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())
	// Awaiting collection with an unpaid order only happens if payment was
	// reversed out of band, but the guard must still hold.
	order := seedOrder(repo, models.OrderStatusAwaitingCollection, models.PaymentStatusUnpaid, testPatient.ID)

	_, err := uc.Transition(context.Background(), testTech, order.ID, models.OrderActionCollect)
	require.Error(t, err)

	var customErr *exceptions.CustomError
	require.ErrorAs(t, err, &customErr)
	assert.Contains(t, customErr.DevMessage, "payment_not_confirmed")
	assert.Equal(t, 0, repo.eventCount())
}

func TestTransitionCollectRecordsCollector(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())
	order := seedOrder(repo, models.OrderStatusAwaitingCollection, models.PaymentStatusPaid, testPatient.ID)

	updated, err := uc.Transition(context.Background(), testTech, order.ID, models.OrderActionCollect)
	require.NoError(t, err)

	assert.Equal(t, string(models.OrderStatusCollected), updated.Status)
	require.NotNil(t, updated.CollectedBy)
	assert.Equal(t, testTech.ID, *updated.CollectedBy)
	assert.NotNil(t, updated.CollectedAt)
}

func TestTransitionCancelRefundsPaidOrder(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())
	order := seedOrder(repo, models.OrderStatusCollected, models.PaymentStatusPaid, testPatient.ID)

	updated, err := uc.Transition(context.Background(), testPatient, order.ID, models.OrderActionCancel)
	require.NoError(t, err)

	assert.Equal(t, string(models.OrderStatusCancelled), updated.Status)
	assert.Equal(t, string(models.PaymentStatusRefunded), updated.PaymentStatus)
	assert.NotNil(t, updated.CancelledAt)
}

func TestConcurrentCancelAndSubmit(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())
	order := seedOrder(repo, models.OrderStatusCollected, models.PaymentStatusPaid, testPatient.ID)

	var wg sync.WaitGroup
	var cancelErr, submitErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = uc.Transition(context.Background(), testPatient, order.ID, models.OrderActionCancel)
	}()
	go func() {
		defer wg.Done()
		_, submitErr = uc.Transition(context.Background(), testTech, order.ID, models.OrderActionSubmitToLab)
	}()
	wg.Wait()

	succeeded := 0
	if cancelErr == nil {
		succeeded++
	}
	if submitErr == nil {
		succeeded++
	}
	assert.Equal(t, 1, succeeded, "exactly one of two racing transitions commits")
	assert.Equal(t, 1, repo.eventCount(), "the losing transition emits nothing")

	stored, _ := repo.FindByID(context.Background(), order.ID)
	assert.Contains(t, []models.OrderStatus{models.OrderStatusCancelled, models.OrderStatusSubmittedToLab}, stored.Status)
}

func TestCheckLabelPrintable(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())

	printable := seedOrder(repo, models.OrderStatusAwaitingCollection, models.PaymentStatusPaid, testPatient.ID)
	finished := seedOrder(repo, models.OrderStatusCompleted, models.PaymentStatusPaid, testPatient.ID)

	assert.NoError(t, uc.CheckLabelPrintable(context.Background(), testTech, printable.ID))
	assert.Error(t, uc.CheckLabelPrintable(context.Background(), testTech, finished.ID), "labels are only printable before submission")
	assert.Error(t, uc.CheckLabelPrintable(context.Background(), testPatient, printable.ID), "patients may not print labels")
}

func TestCreateAndUpdateOrder(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())

	created, err := uc.CreateOrder(context.Background(), testPatient, &requests.CreateOrder{Notes: "fasting panel"})
	require.NoError(t, err)
	assert.Equal(t, string(models.OrderStatusPendingPayment), created.Status)
	assert.Equal(t, string(models.PaymentStatusUnpaid), created.PaymentStatus)
	assert.NotEmpty(t, created.OrderNumber)

	updated, err := uc.UpdateOrder(context.Background(), testPatient, created.ID, &requests.UpdateOrder{Notes: "fasting panel, morning draw"})
	require.NoError(t, err)
	assert.Equal(t, "fasting panel, morning draw", updated.Notes)

	_, err = uc.UpdateOrder(context.Background(), models.Actor{ID: "someone-else", Roles: []string{constvars.RoleTypePatient}}, created.ID, &requests.UpdateOrder{Notes: "x"})
	assert.Error(t, err, "only the owner may update a pending order")
}

func TestListOrdersPaginated(t *testing.T) {
	repo := newFakeOrderRepository()
	uc := newTestOrderUsecase(repo, newFakeLocker())

	for i := 0; i < 5; i++ {
		seedOrder(repo, models.OrderStatusPendingPayment, models.PaymentStatusUnpaid, testPatient.ID)
	}
	seedOrder(repo, models.OrderStatusPendingPayment, models.PaymentStatusUnpaid, "someone-else")

	page, total, err := uc.ListOrdersForActor(context.Background(), testPatient, &requests.Pagination{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)
	assert.Equal(t, 5, total, "total counts only the caller's orders")

	last, total, err := uc.ListOrdersForActor(context.Background(), testPatient, &requests.Pagination{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, last, 1)
	assert.Equal(t, 5, total)

	empty, _, err := uc.ListOrdersForActor(context.Background(), testPatient, &requests.Pagination{Page: 4, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

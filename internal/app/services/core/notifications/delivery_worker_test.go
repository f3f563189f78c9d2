package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/services/shared/notifqueue"
	"labtrace-service/internal/pkg/constvars"
	"labtrace-service/internal/pkg/dto/requests"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type fakeDeliveryQueue struct {
	mu        sync.Mutex
	items     []notifqueue.QueuedItem
	acked     []uint64
	requeued  []notifqueue.NotificationQueueMessage
	deadQueue []notifqueue.NotificationQueueMessage
}

func (f *fakeDeliveryQueue) FetchN(ctx context.Context, in *notifqueue.FetchNInput) (*notifqueue.FetchNOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := in.Max
	if n > len(f.items) {
		n = len(f.items)
	}
	batch := f.items[:n]
	f.items = f.items[n:]
	return &notifqueue.FetchNOutput{Items: batch}, nil
}

func (f *fakeDeliveryQueue) AckMessage(ctx context.Context, in *notifqueue.AckMessageInput) (*notifqueue.AckMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acked = append(f.acked, in.DeliveryTag)
	return &notifqueue.AckMessageOutput{}, nil
}

func (f *fakeDeliveryQueue) Reenqueue(ctx context.Context, in *notifqueue.ReenqueueInput) (*notifqueue.ReenqueueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requeued = append(f.requeued, in.Message)
	return &notifqueue.ReenqueueOutput{}, nil
}

func (f *fakeDeliveryQueue) EnqueueToDeadQueue(ctx context.Context, in *notifqueue.EnqueueToDLQInput) (*notifqueue.EnqueueToDLQOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadQueue = append(f.deadQueue, in.Message)
	return &notifqueue.EnqueueToDLQOutput{}, nil
}

type recordingMailer struct {
	mu          sync.Mutex
	sent        [][]string
	hadDeadline []bool
	failWith    error
}

func (m *recordingMailer) PublishEmail(ctx context.Context, request *requests.EmailPayload) error {
	return nil
}

func (m *recordingMailer) SendBasicEmail(ctx context.Context, to []string, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := ctx.Deadline()
	m.hadDeadline = append(m.hadDeadline, ok)
	if m.failWith != nil {
		return m.failWith
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) ValidateEmail(email string) bool { return true }

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
}

func (l *recordingLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return true, uuid.NewString(), nil
}

func (l *recordingLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return nil
}

func queuedEmail(tag uint64, to []string, failedCount int) notifqueue.QueuedItem {
	return notifqueue.QueuedItem{
		DeliveryTag: tag,
		Message: notifqueue.NotificationQueueMessage{
			ID: uuid.NewString(),
			Email: requests.EmailPayload{
				Subject:     "Your lab results are ready",
				To:          to,
				Body:        "body",
				Kind:        constvars.NotificationKindResultsReady,
				OrderNumber: "LAB-20260110-123456",
			},
			FailedCount: failedCount,
		},
	}
}

func newTestDeliveryWorker(queue deliveryQueue, locker *recordingLocker, mailer *recordingMailer) *DeliveryWorker {
	cfg := &config.InternalConfig{}
	cfg.Notification.MaxDeliveryAttempts = 3
	cfg.Notification.QueuePrefetch = 10
	cfg.Notification.SendTimeoutInSeconds = 5
	return &DeliveryWorker{
		log:     zap.NewNop(),
		cfg:     cfg,
		locker:  locker,
		queue:   queue,
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Inf, 1),
		stop:    make(chan struct{}),
	}
}

func TestDeliveryWorkerSendsUnderLockWithDeadline(t *testing.T) {
	queue := &fakeDeliveryQueue{items: []notifqueue.QueuedItem{
		queuedEmail(1, []string{"patient@example.com", "guardian@example.com"}, 0),
	}}
	locker := &recordingLocker{}
	mailer := &recordingMailer{}
	worker := newTestDeliveryWorker(queue, locker, mailer)

	worker.runOnce(context.Background())

	require.Equal(t, []string{constvars.DeliveryWorkerLockKey}, locker.keys)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"patient@example.com", "guardian@example.com"}, mailer.sent[0],
		"every recipient reaches the relay individually")
	assert.Equal(t, []bool{true}, mailer.hadDeadline, "each send attempt carries a deadline")
	assert.Equal(t, []uint64{1}, queue.acked)
	assert.Empty(t, queue.requeued)
}

func TestDeliveryWorkerRequeuesThenDeadLetters(t *testing.T) {
	queue := &fakeDeliveryQueue{items: []notifqueue.QueuedItem{
		queuedEmail(7, []string{"patient@example.com"}, 0),
	}}
	mailer := &recordingMailer{failWith: errors.New("relay unreachable")}
	worker := newTestDeliveryWorker(queue, &recordingLocker{}, mailer)

	worker.runOnce(context.Background())
	require.Len(t, queue.requeued, 1)
	assert.Equal(t, 1, queue.requeued[0].FailedCount)
	assert.Empty(t, queue.deadQueue)

	queue.items = []notifqueue.QueuedItem{{DeliveryTag: 8, Message: queue.requeued[0]}}
	worker.runOnce(context.Background())
	queue.items = []notifqueue.QueuedItem{{DeliveryTag: 9, Message: queue.requeued[1]}}
	worker.runOnce(context.Background())

	require.Len(t, queue.deadQueue, 1, "the third failed attempt lands on the dead letter queue")
	assert.Equal(t, 3, queue.deadQueue[0].FailedCount)
}

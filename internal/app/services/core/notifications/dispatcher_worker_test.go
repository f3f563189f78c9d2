package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeOutboxRepo struct {
	mu        sync.Mutex
	pending   []models.OutboxEvent
	processed []string
	attempts  map[string]int
	dead      []string
}

func newFakeOutboxRepo(events ...models.OutboxEvent) *fakeOutboxRepo {
	return &fakeOutboxRepo{pending: events, attempts: make(map[string]int)}
}

func (f *fakeOutboxRepo) FindPending(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeOutboxRepo) MarkProcessed(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, eventID)
	f.removePending(eventID)
	return nil
}

func (f *fakeOutboxRepo) IncrementAttempts(ctx context.Context, eventID string, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[eventID]++
	for i := range f.pending {
		if f.pending[i].ID == eventID {
			f.pending[i].Attempts++
		}
	}
	return nil
}

func (f *fakeOutboxRepo) MarkDead(ctx context.Context, eventID string, lastError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead = append(f.dead, eventID)
	f.removePending(eventID)
	return nil
}

func (f *fakeOutboxRepo) removePending(eventID string) {
	remaining := f.pending[:0]
	for _, event := range f.pending {
		if event.ID != eventID {
			remaining = append(remaining, event)
		}
	}
	f.pending = remaining
}

type fakeWorkerLocker struct{}

func (f *fakeWorkerLocker) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	return true, uuid.NewString(), nil
}

func (f *fakeWorkerLocker) Unlock(ctx context.Context, key, lockValue string) error {
	return nil
}

type stubDispatcher struct {
	failIDs      map[string]error
	seen         []string
	missDeadline bool
}

func (s *stubDispatcher) DispatchEvent(ctx context.Context, event models.OutboxEvent) error {
	s.seen = append(s.seen, event.ID)
	if _, ok := ctx.Deadline(); !ok {
		s.missDeadline = true
	}
	if err, ok := s.failIDs[event.ID]; ok {
		return err
	}
	return nil
}

func workerConfig() *config.InternalConfig {
	cfg := &config.InternalConfig{}
	cfg.Notification.MaxDeliveryAttempts = 3
	cfg.Notification.DispatchBatchSize = 10
	cfg.Notification.DispatchIntervalInSec = 5
	return cfg
}

func pendingEvent(attempts int) models.OutboxEvent {
	return models.OutboxEvent{
		ID:        uuid.NewString(),
		EventType: models.EventOrderStatusChanged,
		OrderID:   uuid.NewString(),
		Payload:   []byte(`{}`),
		Status:    models.OutboxStatusPending,
		Attempts:  attempts,
		CreatedAt: time.Now().UTC(),
	}
}

func TestDispatcherWorkerMarksProcessed(t *testing.T) {
	first := pendingEvent(0)
	second := pendingEvent(0)
	outbox := newFakeOutboxRepo(first, second)
	stub := &stubDispatcher{}
	worker := NewDispatcherWorker(zap.NewNop(), workerConfig(), &fakeWorkerLocker{}, outbox, stub)

	worker.runOnce(context.Background(), 5*time.Second)

	assert.ElementsMatch(t, []string{first.ID, second.ID}, stub.seen)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, outbox.processed)
	assert.Empty(t, outbox.dead)
	assert.False(t, stub.missDeadline, "every dispatch attempt runs under a deadline")
}

func TestDispatcherWorkerRetriesThenDeadLetters(t *testing.T) {
	event := pendingEvent(0)
	outbox := newFakeOutboxRepo(event)
	stub := &stubDispatcher{failIDs: map[string]error{event.ID: errors.New("smtp relay down")}}
	worker := NewDispatcherWorker(zap.NewNop(), workerConfig(), &fakeWorkerLocker{}, outbox, stub)

	worker.runOnce(context.Background(), 5*time.Second)
	worker.runOnce(context.Background(), 5*time.Second)
	require.Empty(t, outbox.dead, "first two failures only increment attempts")
	assert.Equal(t, 2, outbox.attempts[event.ID])

	worker.runOnce(context.Background(), 5*time.Second)
	assert.Equal(t, []string{event.ID}, outbox.dead, "third failure exhausts the retry budget")
	assert.Empty(t, outbox.processed)
}

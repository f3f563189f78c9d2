package notifications

import (
	"context"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/models"
	"labtrace-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

type eventDispatcher interface {
	DispatchEvent(ctx context.Context, event models.OutboxEvent) error
}

// DispatcherWorker drains pending outbox events on a fixed interval. Only one
// instance makes progress at a time behind a distributed lock, so scaling out
// never double-sends.
type DispatcherWorker struct {
	log        *zap.Logger
	cfg        *config.InternalConfig
	locker     contracts.LockerService
	outbox     contracts.OutboxRepository
	dispatcher eventDispatcher
	stop       chan struct{}
}

func NewDispatcherWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	outboxRepository contracts.OutboxRepository,
	dispatcher eventDispatcher,
) *DispatcherWorker {
	return &DispatcherWorker{
		log:        log,
		cfg:        cfg,
		locker:     lockerSvc,
		outbox:     outboxRepository,
		dispatcher: dispatcher,
		stop:       make(chan struct{}),
	}
}

// Start begins the ticker loop. It returns a stop function to halt execution.
func (w *DispatcherWorker) Start(ctx context.Context) (stop func()) {
	interval := time.Duration(w.cfg.Notification.DispatchIntervalInSec) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	stopped := make(chan struct{})

	w.log.Info("DispatcherWorker started", zap.Duration("interval", interval))

	go func() {
		defer close(stopped)
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case <-w.stop:
				ticker.Stop()
				return
			case <-ticker.C:
				w.runOnce(ctx, interval)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *DispatcherWorker) runOnce(ctx context.Context, interval time.Duration) {
	ttl := interval - time.Second
	if ttl < time.Second {
		ttl = time.Second
	}
	acquired, lockVal, err := w.locker.TryLock(ctx, constvars.DispatcherWorkerLockKey, ttl)
	if err != nil {
		w.log.Error("DispatcherWorker lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.DispatcherWorkerLockKey, lockVal); err != nil {
			w.log.Error("DispatcherWorker unlock failed", zap.Error(err))
		}
	}()

	batch := w.cfg.Notification.DispatchBatchSize
	if batch <= 0 {
		batch = 20
	}
	events, err := w.outbox.FindPending(ctx, batch)
	if err != nil {
		w.log.Error("DispatcherWorker fetch pending events failed", zap.Error(err))
		return
	}

	for _, event := range events {
		w.processEvent(ctx, event)
	}
}

func (w *DispatcherWorker) processEvent(ctx context.Context, event models.OutboxEvent) {
	timeout := time.Duration(w.cfg.Notification.SendTimeoutInSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// A bounded attempt turns a hung downstream into a countable failure
	// instead of freezing the drain loop.
	dispatchCtx, cancel := context.WithTimeout(ctx, timeout)
	err := w.dispatcher.DispatchEvent(dispatchCtx, event)
	cancel()
	if err == nil {
		if markErr := w.outbox.MarkProcessed(ctx, event.ID); markErr != nil {
			w.log.Error("DispatcherWorker mark processed failed",
				zap.String("event_id", event.ID),
				zap.Error(markErr))
		}
		return
	}

	maxAttempts := w.cfg.Notification.MaxDeliveryAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	// Attempts counts prior failures; this failure makes attempts+1.
	if event.Attempts+1 >= maxAttempts {
		if deadErr := w.outbox.MarkDead(ctx, event.ID, err.Error()); deadErr != nil {
			w.log.Error("DispatcherWorker mark dead failed",
				zap.String("event_id", event.ID),
				zap.Error(deadErr))
			return
		}
		w.log.Error("DispatcherWorker event moved to dead letter, operator attention required",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.EventType)),
			zap.String("order_id", event.OrderID),
			zap.Int("attempts", event.Attempts+1),
			zap.Error(err))
		return
	}

	if incErr := w.outbox.IncrementAttempts(ctx, event.ID, err.Error()); incErr != nil {
		w.log.Error("DispatcherWorker increment attempts failed",
			zap.String("event_id", event.ID),
			zap.Error(incErr))
		return
	}
	w.log.Warn("DispatcherWorker dispatch failed, will retry",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.EventType)),
		zap.Int("attempts", event.Attempts+1),
		zap.Error(err))
}

package notifications

import (
	"context"
	"time"

	"labtrace-service/internal/app/config"
	"labtrace-service/internal/app/contracts"
	"labtrace-service/internal/app/services/shared/notifqueue"
	"labtrace-service/internal/pkg/constvars"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// smtpSendsPerSecond paces outbound mail so a drained backlog cannot flood
// the relay.
const smtpSendsPerSecond = 5

type deliveryQueue interface {
	FetchN(ctx context.Context, in *notifqueue.FetchNInput) (*notifqueue.FetchNOutput, error)
	AckMessage(ctx context.Context, in *notifqueue.AckMessageInput) (*notifqueue.AckMessageOutput, error)
	Reenqueue(ctx context.Context, in *notifqueue.ReenqueueInput) (*notifqueue.ReenqueueOutput, error)
	EnqueueToDeadQueue(ctx context.Context, in *notifqueue.EnqueueToDLQInput) (*notifqueue.EnqueueToDLQOutput, error)
}

// DeliveryWorker consumes the notification queue and performs the actual SMTP
// sends with at-least-once semantics. A message that keeps failing ends up on
// the dead letter queue instead of blocking the stream. One instance drains
// at a time behind a distributed lock, same as the dispatcher.
type DeliveryWorker struct {
	log     *zap.Logger
	cfg     *config.InternalConfig
	locker  contracts.LockerService
	queue   deliveryQueue
	mailer  contracts.MailerService
	limiter *rate.Limiter
	stop    chan struct{}
}

func NewDeliveryWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	queue *notifqueue.Service,
	mailerService contracts.MailerService,
) *DeliveryWorker {
	return &DeliveryWorker{
		log:     log,
		cfg:     cfg,
		locker:  lockerSvc,
		queue:   queue,
		mailer:  mailerService,
		limiter: rate.NewLimiter(rate.Limit(smtpSendsPerSecond), smtpSendsPerSecond),
		stop:    make(chan struct{}),
	}
}

// Start begins the polling loop. It returns a stop function to halt execution.
func (w *DeliveryWorker) Start(ctx context.Context) (stop func()) {
	ticker := time.NewTicker(2 * time.Second)
	stopped := make(chan struct{})

	w.log.Info("DeliveryWorker started")

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
				w.runOnce(ctx)
			}
		}
	}()

	return func() {
		close(w.stop)
	}
}

func (w *DeliveryWorker) sendTimeout() time.Duration {
	if secs := w.cfg.Notification.SendTimeoutInSeconds; secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 10 * time.Second
}

func (w *DeliveryWorker) runOnce(ctx context.Context) {
	max := w.cfg.Notification.QueuePrefetch
	if max <= 0 {
		max = 10
	}

	// The lock must outlive a full drain of the batch at worst-case send
	// durations, otherwise a second instance starts mid-drain.
	ttl := w.sendTimeout() * time.Duration(max)
	acquired, lockVal, err := w.locker.TryLock(ctx, constvars.DeliveryWorkerLockKey, ttl)
	if err != nil {
		w.log.Error("DeliveryWorker lock attempt failed", zap.Error(err))
		return
	}
	if !acquired {
		return
	}
	defer func() {
		if err := w.locker.Unlock(ctx, constvars.DeliveryWorkerLockKey, lockVal); err != nil {
			w.log.Error("DeliveryWorker unlock failed", zap.Error(err))
		}
	}()
	out, err := w.queue.FetchN(ctx, &notifqueue.FetchNInput{Max: max})
	if err != nil {
		w.log.Error("DeliveryWorker fetch failed", zap.Error(err))
		return
	}

	for _, item := range out.Items {
		w.deliverItem(ctx, item)
	}
}

func (w *DeliveryWorker) deliverItem(ctx context.Context, item notifqueue.QueuedItem) {
	msg := item.Message
	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	// Each attempt gets its own deadline so one hung relay connection
	// cannot stall the drain loop.
	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout())
	err := w.mailer.SendBasicEmail(sendCtx, msg.Email.To, msg.Email.Subject, msg.Email.Body)
	cancel()
	if err == nil {
		if _, ackErr := w.queue.AckMessage(ctx, &notifqueue.AckMessageInput{DeliveryTag: item.DeliveryTag}); ackErr != nil {
			w.log.Error("DeliveryWorker ack failed after send",
				zap.String("message_id", msg.ID),
				zap.Error(ackErr))
			return
		}
		w.log.Info("DeliveryWorker notification delivered",
			zap.String("message_id", msg.ID),
			zap.String("kind", msg.Email.Kind),
			zap.String("order_number", msg.Email.OrderNumber))
		return
	}

	maxAttempts := w.cfg.Notification.MaxDeliveryAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	msg.FailedCount++
	if msg.FailedCount >= maxAttempts {
		if _, dlqErr := w.queue.EnqueueToDeadQueue(ctx, &notifqueue.EnqueueToDLQInput{Message: msg}); dlqErr != nil {
			w.log.Error("DeliveryWorker enqueue to dead letter failed",
				zap.String("message_id", msg.ID),
				zap.Error(dlqErr))
			return
		}
		_, _ = w.queue.AckMessage(ctx, &notifqueue.AckMessageInput{DeliveryTag: item.DeliveryTag})
		w.log.Error("DeliveryWorker notification moved to dead letter, operator attention required",
			zap.String("message_id", msg.ID),
			zap.String("kind", msg.Email.Kind),
			zap.String("order_number", msg.Email.OrderNumber),
			zap.Int("failed_count", msg.FailedCount),
			zap.Error(err))
		return
	}

	if _, requeueErr := w.queue.Reenqueue(ctx, &notifqueue.ReenqueueInput{Message: msg}); requeueErr != nil {
		w.log.Error("DeliveryWorker reenqueue failed",
			zap.String("message_id", msg.ID),
			zap.Error(requeueErr))
		return
	}
	_, _ = w.queue.AckMessage(ctx, &notifqueue.AckMessageInput{DeliveryTag: item.DeliveryTag})
	w.log.Warn("DeliveryWorker send failed, requeued",
		zap.String("message_id", msg.ID),
		zap.Int("failed_count", msg.FailedCount),
		zap.Error(err))
}

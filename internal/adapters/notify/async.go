package notify

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/example/grievd/internal/metrics"
	"github.com/example/grievd/internal/ports/secondary"
	"github.com/example/grievd/internal/workerpool"
)

// DefaultSendTimeout bounds one delivery attempt made by an AsyncNotifier.
const DefaultSendTimeout = 5 * time.Second

// AsyncNotifier hands notifications to a worker pool so command latency
// never depends on the sink. When the queue is full the notification is
// dropped and counted.
type AsyncNotifier struct {
	next        secondary.Notifier
	pool        *workerpool.Pool[secondary.Notification, struct{}]
	logger      *slog.Logger
	cancel      context.CancelFunc
	sendTimeout time.Duration
	dropped     atomic.Int64
}

// NewAsyncNotifier wraps next with workers goroutines and a queue of depth.
func NewAsyncNotifier(next secondary.Notifier, workers, depth int, logger *slog.Logger) *AsyncNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &AsyncNotifier{
		next:        next,
		logger:      logger,
		cancel:      cancel,
		sendTimeout: DefaultSendTimeout,
	}
	a.pool = workerpool.New(ctx, workers, depth, a.deliver)
	return a
}

var _ secondary.Notifier = (*AsyncNotifier)(nil)

// Notify enqueues n. It returns nil even when n is dropped; drops are
// visible through Dropped and the notifications metric.
func (a *AsyncNotifier) Notify(_ context.Context, n secondary.Notification) error {
	if !a.pool.Submit(n) {
		a.dropped.Add(1)
		metrics.NotificationsTotal.WithLabelValues("async", "dropped").Inc()
		a.logger.Warn("notification dropped", "grievance_id", n.GrievanceID, "recipient", n.Recipient)
	}
	a.observeQueue()
	return nil
}

func (a *AsyncNotifier) deliver(ctx context.Context, n secondary.Notification) (struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, a.sendTimeout)
	defer cancel()
	if err := a.next.Notify(ctx, n); err != nil {
		a.logger.Warn("notification delivery failed",
			"grievance_id", n.GrievanceID,
			"recipient", n.Recipient,
			"err", err,
		)
	}
	a.observeQueue()
	return struct{}{}, nil
}

func (a *AsyncNotifier) observeQueue() {
	if c := a.pool.QueueCap(); c > 0 {
		metrics.NotifyQueueUtilization.Set(float64(a.pool.QueueLen()) / float64(c))
	}
}

// Dropped returns how many notifications were discarded because the queue was full.
func (a *AsyncNotifier) Dropped() int64 {
	return a.dropped.Load()
}

// Close delivers everything already queued, then stops the workers.
func (a *AsyncNotifier) Close() {
	a.pool.Drain()
	a.cancel()
}

package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bbangting/auth/internal/models"
)

var (
	ErrQueueFull        = errors.New("notification queue full")
	ErrDispatcherClosed = errors.New("notification dispatcher closed")
)

const deliveryTimeout = 5 * time.Second

// Dispatcher decouples callers from notification delivery: NotifyLogin only
// enqueues, worker goroutines call the wrapped notifier.
type Dispatcher struct {
	next  Notifier
	log   *slog.Logger
	queue chan models.User

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(next Notifier, size, workers int, log *slog.Logger) *Dispatcher {
	if size <= 0 {
		size = 64
	}
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.Default()
	}

	d := &Dispatcher{
		next:  next,
		log:   log.With("component", "notify.dispatcher"),
		queue: make(chan models.User, size),
	}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.work()
	}
	return d
}

// NotifyLogin never blocks. The caller's context is not propagated to delivery.
func (d *Dispatcher) NotifyLogin(_ context.Context, u models.User) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- u:
		return nil
	default:
		d.log.Warn("notification_dropped", "reason", "queue_full", "user_id", u.ID)
		return ErrQueueFull
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for u := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		if err := d.next.NotifyLogin(ctx, u); err != nil {
			d.log.Error("notification_failed", "user_id", u.ID, "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

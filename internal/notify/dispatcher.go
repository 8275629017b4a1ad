package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const deliveryTimeout = 30 * time.Second

// Dispatcher delivers notices either inline or through a background worker pool.
type Dispatcher struct {
	notifier Notifier
	pool     WorkerPoolI
}

func NewDispatcher(notifier Notifier, workers int) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		pool:     NewWorkerPool(workers),
	}
}

// Notify delivers msg before returning.
func (d *Dispatcher) Notify(ctx context.Context, msg Message) error {
	return d.notifier.Notify(ctx, msg)
}

// Enqueue hands msg to a worker. Delivery runs detached from ctx, which only bounds the wait for a free slot.
func (d *Dispatcher) Enqueue(ctx context.Context, msg Message) error {
	err := d.pool.AddTask(ctx, func() error {
		dctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		return d.notifier.Notify(dctx, msg)
	})
	if err != nil {
		zap.L().Error("can't enqueue notification", zap.String("kind", string(msg.Kind)), zap.Error(err))
	}
	return err
}

func (d *Dispatcher) Close() {
	d.pool.Close()
}

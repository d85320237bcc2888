package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultSendTimeout = 30 * time.Second

var ErrDispatcherClosed = errors.New("mail: dispatcher closed")

// Dispatcher sends messages on background goroutines so callers never wait
// on, or fail because of, mail delivery.
type Dispatcher struct {
	sender  Sender
	logger  *zap.Logger
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, logger *zap.Logger, timeout time.Duration) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{sender: sender, logger: logger, timeout: timeout}
}

// Dispatch queues one message. It returns ErrDispatcherClosed after Close.
func (d *Dispatcher) Dispatch(to, subject, htmlBody string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, to, subject, htmlBody); err != nil {
			d.logger.Warn("mail delivery failed",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
			return
		}
		d.logger.Debug("mail delivered", zap.String("to", to), zap.String("subject", subject))
	}()
	return nil
}

// Close stops accepting messages and waits for in-flight sends or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
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

package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Dispatcher sends emails on a background worker so request handlers never
// wait on SMTP. Failures are logged and dropped.
type Dispatcher struct {
	mailer  Mailer
	logger  *slog.Logger
	queue   chan Email
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(mailer Mailer, logger *slog.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		mailer:  mailer,
		logger:  logger,
		queue:   make(chan Email, size),
		timeout: 30 * time.Second,
		done:    make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for email := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.mailer.Send(ctx, email); err != nil {
			d.logger.Error("email delivery failed",
				"to", email.To,
				"subject", email.Subject,
				"error", err,
			)
		}
		cancel()
	}
}

// Enqueue schedules an email. It returns false when the email was dropped
// because the queue is full or the dispatcher is closed.
func (d *Dispatcher) Enqueue(email Email) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("email dispatcher closed, dropping message",
			"to", email.To,
			"subject", email.Subject,
		)
		return false
	}
	select {
	case d.queue <- email:
		return true
	default:
		d.logger.Warn("email queue full, dropping message",
			"to", email.To,
			"subject", email.Subject,
		)
		return false
	}
}

// Close stops accepting emails and waits for the queued ones to be sent or ctx to end.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

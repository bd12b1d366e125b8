package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dispatcher routes toasts to registered senders. Delivery is synchronous
// so a toast is visible as soon as Notify returns.
type Dispatcher struct {
	senders []Sender
	mu      sync.RWMutex
	logger  *slog.Logger
	now     func() time.Time
}

// NewDispatcher creates a new notification dispatcher.
func NewDispatcher(logger *slog.Logger, senders ...Sender) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		senders: senders,
		logger:  logger,
		now:     time.Now,
	}
}

// Register adds a sender to the dispatcher.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders = append(d.senders, sender)
}

// Notify builds a toast and dispatches it.
func (d *Dispatcher) Notify(message string, severity Severity) {
	d.Dispatch(context.Background(), &Toast{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		CreatedAt: d.now(),
	})
}

// Success, Error and Info are shorthands for Notify.
func (d *Dispatcher) Success(message string) { d.Notify(message, SeveritySuccess) }
func (d *Dispatcher) Error(message string)   { d.Notify(message, SeverityError) }
func (d *Dispatcher) Info(message string)    { d.Notify(message, SeverityInfo) }

// Dispatch sends a toast to all registered senders.
func (d *Dispatcher) Dispatch(ctx context.Context, toast *Toast) {
	d.mu.RLock()
	senders := make([]Sender, len(d.senders))
	copy(senders, d.senders)
	d.mu.RUnlock()

	for _, sender := range senders {
		d.sendWithRecover(ctx, sender, toast)
	}
}

// sendWithRecover sends a toast and recovers from panics.
func (d *Dispatcher) sendWithRecover(ctx context.Context, sender Sender, toast *Toast) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notify: panic in sender", slog.String("sender", sender.Name()), slog.Any("panic", r))
		}
	}()

	if err := sender.Send(ctx, toast); err != nil {
		d.logger.Warn("notify: error sending", slog.String("sender", sender.Name()), slog.Any("error", err))
	}
}

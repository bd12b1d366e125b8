// Package notify provides transient user notifications ("toasts").
//
// A toast is a short message with a severity. Emitting one is a pure state
// change: the Dispatcher fans it out to its senders (the on-screen Queue,
// the log, stderr for one-shot commands) and the view layer renders the
// Queue. Toasts expire on their own after a fixed duration or earlier when
// dismissed.
package notify

import (
	"context"
	"time"
)

// Severity classifies a toast.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Toast is one notification.
type Toast struct {
	ID       string
	Message  string
	Severity Severity

	CreatedAt time.Time

	// ExpiresAt is set by the Queue when the toast is shown.
	ExpiresAt time.Time
}

// Sender is the interface for notification senders.
type Sender interface {
	// Send delivers the toast. Returns an error if it could not be delivered.
	Send(ctx context.Context, toast *Toast) error

	// Name returns the sender's name for logging purposes.
	Name() string
}

// Emitter is what resource controllers and pages use to report outcomes.
type Emitter interface {
	Notify(message string, severity Severity)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(message string, severity Severity)

func (f EmitterFunc) Notify(message string, severity Severity) {
	f(message, severity)
}

// Discard drops every notification.
var Discard Emitter = EmitterFunc(func(string, Severity) {})

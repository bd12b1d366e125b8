package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL = 4 * time.Second
	DefaultCap = 5
)

// QueueOptions configures a Queue
type QueueOptions struct {
	// TTL is how long a toast stays. Zero means DefaultTTL.
	TTL time.Duration

	// Cap bounds concurrent toasts; the oldest is dropped. Zero means
	// DefaultCap, negative means unbounded.
	Cap int

	// Now replaces time.Now in tests.
	Now func() time.Time
}

// Queue is the declarative list of visible toasts. Toasts stack in
// arrival order with no dedupe.
type Queue struct {
	mu    sync.Mutex
	items []Toast
	ttl   time.Duration
	cap   int
	now   func() time.Time
}

// NewQueue creates an empty queue.
func NewQueue(opts QueueOptions) *Queue {
	q := &Queue{ttl: opts.TTL, cap: opts.Cap, now: opts.Now}

	if q.ttl <= 0 {
		q.ttl = DefaultTTL
	}

	if q.cap == 0 {
		q.cap = DefaultCap
	}

	if q.now == nil {
		q.now = time.Now
	}

	return q
}

func (q *Queue) Name() string { return "queue" }

// Send shows the toast, satisfying Sender.
func (q *Queue) Send(_ context.Context, toast *Toast) error {
	q.add(*toast)
	return nil
}

// Push shows a new toast and returns it.
func (q *Queue) Push(message string, severity Severity) Toast {
	return q.add(Toast{ID: uuid.NewString(), Message: message, Severity: severity})
}

func (q *Queue) add(t Toast) Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}

	t.ExpiresAt = now.Add(q.ttl)

	q.items = append(q.items, t)

	if q.cap > 0 && len(q.items) > q.cap {
		q.items = append([]Toast(nil), q.items[len(q.items)-q.cap:]...)
	}

	return t
}

// Dismiss removes a toast early. Reports whether it was present.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}

	return false
}

// DismissAll clears the queue.
func (q *Queue) DismissAll() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
}

// Expire removes toasts whose time is up and returns how many went.
func (q *Queue) Expire(now time.Time) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.items[:0]
	for _, t := range q.items {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		}
	}

	removed := len(q.items) - len(kept)
	q.items = kept

	return removed
}

// Items returns the visible toasts, oldest first.
func (q *Queue) Items() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]Toast(nil), q.items...)
}

// Len returns the number of visible toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// NextExpiry returns when the next toast expires.
func (q *Queue) NextExpiry() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var next time.Time

	for _, t := range q.items {
		if next.IsZero() || t.ExpiresAt.Before(next) {
			next = t.ExpiresAt
		}
	}

	return next, !next.IsZero()
}

// Package debounce turns a fast-changing text input into a bounded stream
// of search requests.
//
// A Gate restarts a fixed delay on every keystroke and only issues the
// request for the last input of a quiet period. Each issued request carries
// a sequence number; starting a new request cancels the previous one and
// any response whose sequence is not the latest issued is discarded, so
// results can never arrive out of order.
//
// The Gate is a plain state machine driven from a bubbletea Update loop:
//
//	case debounce.TickMsg:
//	    cmd = m.gate.Fire(msg)
//	case debounce.ResultMsg[model.Contractor]:
//	    m.gate.Resolve(msg)
package debounce

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// DefaultDelay is the quiet period before a search is issued.
const DefaultDelay = 300 * time.Millisecond

// SearchFunc performs one search.
type SearchFunc[R any] func(ctx context.Context, query string) ([]R, error)

// TickMsg fires when a delay window closes.
type TickMsg struct {
	gate string
	seq  uint64
}

// ResultMsg carries the outcome of one issued search.
type ResultMsg[R any] struct {
	gate  string
	seq   uint64
	Query string
	Items []R
	Err   error
}

// Options configures a Gate
type Options struct {
	// Delay is the quiet period. Zero means DefaultDelay; negative fires
	// on the next loop iteration.
	Delay time.Duration

	// Context parents every request. Cancelling it abandons them all.
	Context context.Context
}

// Gate debounces one search input.
type Gate[R any] struct {
	id     string
	delay  time.Duration
	search SearchFunc[R]
	parent context.Context

	query    string
	seq      uint64
	issued   uint64
	inflight bool
	cancel   context.CancelFunc

	loading  bool
	visible  bool
	results  []R
	err      error
	requests int
}

// New creates a gate around search.
func New[R any](search SearchFunc[R], opts Options) *Gate[R] {
	delay := opts.Delay
	if delay == 0 {
		delay = DefaultDelay
	}

	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}

	return &Gate[R]{
		id:     uuid.NewString(),
		delay:  delay,
		search: search,
		parent: parent,
	}
}

// Input records a new query. A blank query clears everything at once and
// returns nil; otherwise the returned command ticks when the delay ends.
func (g *Gate[R]) Input(query string) tea.Cmd {
	g.query = query
	g.seq++

	if strings.TrimSpace(query) == "" {
		g.finish()
		g.results = nil
		g.err = nil
		g.visible = false

		return nil
	}

	g.visible = true

	msg := TickMsg{gate: g.id, seq: g.seq}
	if g.delay < 0 {
		return func() tea.Msg { return msg }
	}

	return tea.Tick(g.delay, func(time.Time) tea.Msg { return msg })
}

// Fire issues the search if tick belongs to the latest input. The previous
// in-flight request, if any, is cancelled.
func (g *Gate[R]) Fire(tick TickMsg) tea.Cmd {
	if tick.gate != g.id || tick.seq != g.seq {
		return nil
	}

	g.finish()

	ctx, cancel := context.WithCancel(g.parent)

	g.cancel = cancel
	g.issued = g.seq
	g.inflight = true
	g.loading = true
	g.err = nil
	g.requests++

	id, seq, query, search := g.id, g.seq, strings.TrimSpace(g.query), g.search

	return func() tea.Msg {
		items, err := search(ctx, query)
		return ResultMsg[R]{gate: id, seq: seq, Query: query, Items: items, Err: err}
	}
}

// Resolve applies a result. It reports false, changing nothing, for stale
// responses.
func (g *Gate[R]) Resolve(msg ResultMsg[R]) bool {
	if msg.gate != g.id || !g.inflight || msg.seq != g.issued {
		return false
	}

	g.finish()

	if msg.Err != nil {
		if errors.Is(msg.Err, context.Canceled) {
			return false
		}

		g.err = msg.Err
		g.results = nil

		return true
	}

	g.results = msg.Items

	return true
}

// Update routes the gate's own messages. handled is false for anything
// else.
func (g *Gate[R]) Update(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case TickMsg:
		if msg.gate != g.id {
			return nil, false
		}

		return g.Fire(msg), true
	case ResultMsg[R]:
		if msg.gate != g.id {
			return nil, false
		}

		g.Resolve(msg)

		return nil, true
	}

	return nil, false
}

// Dismiss hides the result list without touching the query or results,
// like clicking outside the dropdown.
func (g *Gate[R]) Dismiss() {
	g.visible = false
}

// Show makes the result list visible again when there is a query.
func (g *Gate[R]) Show() {
	g.visible = strings.TrimSpace(g.query) != ""
}

// Close abandons any in-flight request. Late results are ignored.
func (g *Gate[R]) Close() {
	g.finish()
}

func (g *Gate[R]) finish() {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}

	g.inflight = false
	g.loading = false
}

// Query returns the current input.
func (g *Gate[R]) Query() string { return g.query }

// Loading reports whether the latest request is in flight.
func (g *Gate[R]) Loading() bool { return g.loading }

// Visible reports whether the result list should be shown.
func (g *Gate[R]) Visible() bool { return g.visible }

// Results returns the latest accepted results.
func (g *Gate[R]) Results() []R { return g.results }

// Err returns the latest search error.
func (g *Gate[R]) Err() error { return g.err }

// Requests counts searches issued so far.
func (g *Gate[R]) Requests() int { return g.requests }

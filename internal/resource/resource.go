// Package resource implements the per-page controller for one remote
// resource: fetch on mount, loading/error state, and mutations that only
// touch local data after the server confirms them.
//
// A Controller can be driven synchronously (Fetch, Mutate) by one-shot
// commands, or from a bubbletea Update loop with FetchCmd, MutateCmd and
// Apply. In the second form the network call runs inside a tea.Cmd and
// its outcome is applied on the UI goroutine, so state is only ever
// mutated from one place.
package resource

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/notify"
)

// Navigator moves the user to the login entry point.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// Loader fetches the resource.
type Loader[T any] func(ctx context.Context) (T, error)

// State is the snapshot a view renders.
type State[T any] struct {
	Data T

	// Loaded is true once any fetch succeeded.
	Loaded  bool
	Loading bool

	// Mutating is true while any mutation started with MutateCmd is pending.
	Mutating bool

	Err error

	// Redirected is set when a credential problem sent the user to login.
	Redirected bool
}

// Mutation is one create, update, delete or cancel request.
type Mutation[T any] struct {
	// Name describes the action in logs, e.g. "delete project".
	Name string

	Do func(ctx context.Context) error

	// Success is the notification text. Empty means no success toast.
	Success string

	// Patch edits local data after the server confirmed the change.
	Patch func(T) T

	// Refetch reloads the resource after the server confirmed the change.
	Refetch bool
}

// Options configures a Controller
type Options struct {
	// Name identifies the resource in logs ("projects").
	Name string

	Notifier  notify.Emitter
	Navigator Navigator
	Logger    *slog.Logger
}

// Controller owns fetch and mutate state for one resource. It is not safe
// for concurrent use; drive it from a single goroutine.
type Controller[T any] struct {
	id     string
	name   string
	load   Loader[T]
	state  State[T]
	gen    uint64

	// in-flight MutateCmd count
	pending int
	notify notify.Emitter
	nav    Navigator
	logger *slog.Logger
}

// New creates a controller around load.
func New[T any](load Loader[T], opts Options) *Controller[T] {
	c := &Controller[T]{
		id:     uuid.NewString(),
		name:   opts.Name,
		load:   load,
		notify: opts.Notifier,
		nav:    opts.Navigator,
		logger: opts.Logger,
	}

	if c.notify == nil {
		c.notify = notify.Discard
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	if c.name == "" {
		c.name = "resource"
	}

	return c
}

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	return c.state
}

// Fetch loads the resource and returns the resulting state. Credential
// problems redirect to login and are reported in the state, never
// returned.
func (c *Controller[T]) Fetch(ctx context.Context) State[T] {
	gen := c.begin()

	data, err := c.load(ctx)
	c.loaded(gen, data, err)

	return c.state
}

// Mutate runs m and applies its effect on success. On failure local data
// is left untouched and the error is returned.
func (c *Controller[T]) Mutate(ctx context.Context, m Mutation[T]) error {
	err := m.Do(ctx)
	if err != nil {
		c.fail(m.Name, err)
		return err
	}

	if c.confirmed(m) {
		c.Fetch(ctx)
	}

	return nil
}

func (c *Controller[T]) begin() uint64 {
	c.gen++
	c.state.Loading = true

	c.logger.Debug("fetching", slog.String("resource", c.name), slog.Uint64("gen", c.gen))

	return c.gen
}

// loaded applies a fetch outcome unless a newer fetch started since.
func (c *Controller[T]) loaded(gen uint64, data T, err error) bool {
	if gen != c.gen {
		return false
	}

	c.state.Loading = false

	if err != nil {
		if api.IsCanceled(err) {
			return true
		}

		c.state.Err = err
		c.fail("load "+c.name, err)

		return true
	}

	c.state.Data = data
	c.state.Loaded = true
	c.state.Err = nil
	c.state.Redirected = false

	return true
}

// confirmed applies a successful mutation and reports whether a refetch
// is wanted.
func (c *Controller[T]) confirmed(m Mutation[T]) bool {
	c.logger.Info("mutation confirmed", slog.String("resource", c.name), slog.String("action", m.Name))

	if m.Patch != nil {
		c.state.Data = m.Patch(c.state.Data)
	}

	if m.Success != "" {
		c.notify.Notify(m.Success, notify.SeveritySuccess)
	}

	return m.Refetch
}

func (c *Controller[T]) fail(action string, err error) {
	if api.IsCanceled(err) {
		c.logger.Debug("request abandoned", slog.String("resource", c.name), slog.String("action", action))
		return
	}

	c.logger.Warn("request failed",
		slog.String("resource", c.name),
		slog.String("action", action),
		slog.Any("error", err),
	)

	c.notify.Notify(api.UserMessage(err), notify.SeverityError)

	if api.IsAuth(err) {
		c.state.Redirected = true

		if c.nav != nil {
			c.nav.ToLogin()
		}
	}
}

// Without returns a patch that drops every element matching drop.
func Without[E any](drop func(E) bool) func([]E) []E {
	return func(items []E) []E {
		out := make([]E, 0, len(items))

		for _, item := range items {
			if !drop(item) {
				out = append(out, item)
			}
		}

		return out
	}
}

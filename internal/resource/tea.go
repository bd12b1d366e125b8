package resource

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// LoadedMsg carries a fetch outcome back to the UI goroutine.
type LoadedMsg[T any] struct {
	controller string
	gen        uint64
	data       T
	err        error
}

// MutatedMsg carries a mutation outcome back to the UI goroutine.
type MutatedMsg[T any] struct {
	controller string
	ctx        context.Context
	mutation   Mutation[T]
	Err        error
}

// FetchCmd marks the resource loading and returns the command that loads
// it.
func (c *Controller[T]) FetchCmd(ctx context.Context) tea.Cmd {
	gen := c.begin()
	id, load := c.id, c.load

	return func() tea.Msg {
		data, err := load(ctx)
		return LoadedMsg[T]{controller: id, gen: gen, data: data, err: err}
	}
}

// MutateCmd returns the command that performs m. Nothing local changes
// until its MutatedMsg is applied.
func (c *Controller[T]) MutateCmd(ctx context.Context, m Mutation[T]) tea.Cmd {
	c.pending++
	c.state.Mutating = true
	id := c.id

	return func() tea.Msg {
		return MutatedMsg[T]{controller: id, ctx: ctx, mutation: m, Err: m.Do(ctx)}
	}
}

// Apply handles this controller's messages. handled is false for anything
// else, including messages from other controllers.
func (c *Controller[T]) Apply(msg tea.Msg) (cmd tea.Cmd, handled bool) {
	switch msg := msg.(type) {
	case LoadedMsg[T]:
		if msg.controller != c.id {
			return nil, false
		}

		c.loaded(msg.gen, msg.data, msg.err)

		return nil, true
	case MutatedMsg[T]:
		if msg.controller != c.id {
			return nil, false
		}

		if c.pending > 0 {
			c.pending--
		}

		c.state.Mutating = c.pending > 0

		if msg.Err != nil {
			c.fail(msg.mutation.Name, msg.Err)
			return nil, true
		}

		if c.confirmed(msg.mutation) {
			return c.FetchCmd(msg.ctx), true
		}

		return nil, true
	}

	return nil, false
}

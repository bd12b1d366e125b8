package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ExpireMsg asks the view to sweep expired toasts.
type ExpireMsg struct {
	Now time.Time
}

// TickCmd schedules the next sweep for when the earliest toast expires.
// Returns nil when the queue is empty.
func (q *Queue) TickCmd() tea.Cmd {
	next, ok := q.NextExpiry()
	if !ok {
		return nil
	}

	d := time.Until(next)
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}

	return tea.Tick(d, func(t time.Time) tea.Msg {
		return ExpireMsg{Now: t}
	})
}

// Update handles ExpireMsg and reschedules while toasts remain.
func (q *Queue) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(ExpireMsg)
	if !ok {
		return nil
	}

	q.Expire(m.Now)

	return q.TickCmd()
}

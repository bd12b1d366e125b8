package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/debounce"
	"github.com/inovacc/bidmatch/internal/model"
)

// contractorsPage is search-as-you-type over contractors.
type contractorsPage struct {
	env    *env
	ctx    context.Context
	cancel context.CancelFunc
	input  textinput.Model
	gate   *debounce.Gate[model.Contractor]
	cursor int
}

func newContractorsPage(e *env) *contractorsPage {
	ctx, cancel := context.WithCancel(e.ctx)

	t := textinput.New()
	t.Placeholder = "name, trade or city"
	t.Cursor.Style = focusedStyle
	t.PromptStyle = focusedStyle
	t.TextStyle = focusedStyle
	t.CharLimit = 120
	t.Focus()

	return &contractorsPage{
		env:    e,
		ctx:    ctx,
		cancel: cancel,
		input:  t,
		gate:   debounce.New(e.Client.SearchContractors, debounce.Options{Delay: e.DebounceDelay, Context: ctx}),
	}
}

func (p *contractorsPage) Title() string { return "Contractors" }

func (p *contractorsPage) Init() tea.Cmd {
	return textinput.Blink
}

func (p *contractorsPage) Close() {
	p.gate.Close()
	p.cancel()
}

func (p *contractorsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.gate.Update(msg); handled {
		if _, isResult := msg.(debounce.ResultMsg[model.Contractor]); isResult {
			p.resolved()
		}

		return p, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		results := p.gate.Results()

		switch key.String() {
		case "esc":
			if p.gate.Visible() {
				p.gate.Dismiss()
				return p, nil
			}

			return p, back(false)
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}

			return p, nil
		case "down":
			p.gate.Show()

			if p.cursor < len(results)-1 {
				p.cursor++
			}

			return p, nil
		case "enter":
			if p.gate.Visible() && p.cursor < len(results) {
				return p, push(newRatingsPage(p.env, results[p.cursor]))
			}

			return p, nil
		}
	}

	before := p.input.Value()

	var cmd tea.Cmd

	p.input, cmd = p.input.Update(msg)

	if p.input.Value() != before {
		p.cursor = 0
		return p, tea.Batch(cmd, p.gate.Input(p.input.Value()))
	}

	return p, cmd
}

// resolved reports a failed search. Credential problems send the user to
// login like any other request.
func (p *contractorsPage) resolved() {
	err := p.gate.Err()
	if err == nil {
		return
	}

	p.env.notifier.Error(api.UserMessage(err))

	if api.IsAuth(err) {
		p.env.nav.ToLogin()
	}
}

func (p *contractorsPage) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Find contractors") + "\n\n")
	sb.WriteString(" " + p.input.View() + "\n\n")

	switch {
	case !p.gate.Visible():
	case p.gate.Loading() && len(p.gate.Results()) == 0:
		sb.WriteString(mutedStyle.Render("  Searching...") + "\n")
	case p.gate.Err() != nil:
		sb.WriteString("  " + errorStyle.Render("✗ "+api.UserMessage(p.gate.Err())) + "\n")
	case len(p.gate.Results()) == 0 && !p.gate.Loading():
		sb.WriteString(mutedStyle.Render("  No contractors match") + "\n")
	default:
		for i, c := range p.gate.Results() {
			line := fmt.Sprintf("%s %s", c.Name, mutedStyle.Render(fmt.Sprintf("%s · %s, %s · ★ %.1f (%d)", c.Company, c.City, c.State, c.Rating, c.Reviews)))

			if i == p.cursor {
				sb.WriteString(selectedItemStyle.Render("> "+line) + "\n")
				continue
			}

			sb.WriteString(itemStyle.Render(line) + "\n")
		}
	}

	sb.WriteString("\n" + helpStyle.Render("type to search • ↑/↓: select • enter: ratings • esc: close/back"))

	return docStyle.Render(sb.String())
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
	"github.com/inovacc/bidmatch/internal/staging"
)

// ratingsPage shows a contractor's reviews and lets the user add one.
type ratingsPage struct {
	env        *env
	ctx        context.Context
	cancel     context.CancelFunc
	contractor model.Contractor
	ctrl       *resource.Controller[[]model.Rating]

	adding     bool
	inputs     []textinput.Model
	focusIndex int
	errs       map[string]string
}

func newRatingsPage(e *env, c model.Contractor) *ratingsPage {
	ctx, cancel := context.WithCancel(e.ctx)

	p := &ratingsPage{
		env:        e,
		ctx:        ctx,
		cancel:     cancel,
		contractor: c,
		inputs:     make([]textinput.Model, 2),
	}

	p.ctrl = resource.New(func(ctx context.Context) ([]model.Rating, error) {
		return e.Client.ListRatings(ctx, c.ID)
	}, resource.Options{
		Name:      "ratings",
		Notifier:  e.notifier,
		Navigator: e.nav,
		Logger:    e.Logger,
	})

	for i := range p.inputs {
		t := textinput.New()
		t.Cursor.Style = focusedStyle

		switch i {
		case 0:
			t.Placeholder = "1-5"
			t.CharLimit = 1
		case 1:
			t.Placeholder = "optional comment"
			t.CharLimit = 1000
		}

		p.inputs[i] = t
	}

	return p
}

func (p *ratingsPage) Title() string { return p.contractor.Name }

func (p *ratingsPage) Init() tea.Cmd {
	return p.ctrl.FetchCmd(p.ctx)
}

func (p *ratingsPage) Close() {
	p.cancel()
}

func (p *ratingsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.ctrl.Apply(msg); handled {
		if m, mutated := msg.(resource.MutatedMsg[[]model.Rating]); mutated {
			if m.Err == nil {
				p.closeForm()
			} else {
				p.errs = api.FieldErrors(m.Err)
			}
		}

		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, p.updateInputs(msg)
	}

	if !p.adding {
		switch key.String() {
		case "esc", "q":
			return p, back(false)
		case "r":
			return p, p.ctrl.FetchCmd(p.ctx)
		case "a":
			return p, p.openForm()
		}

		return p, nil
	}

	switch key.String() {
	case "esc":
		p.closeForm()
		return p, nil
	case "tab", "shift+tab", "up", "down":
		return p, p.focus(1 - p.focusIndex)
	case "enter", "ctrl+s":
		if key.String() == "enter" && p.focusIndex == 0 {
			return p, p.focus(1)
		}

		return p, p.submit()
	}

	return p, p.updateInputs(msg)
}

func (p *ratingsPage) openForm() tea.Cmd {
	p.adding = true
	p.errs = nil

	for i := range p.inputs {
		p.inputs[i].SetValue("")
	}

	return p.focus(0)
}

func (p *ratingsPage) closeForm() {
	p.adding = false
	p.errs = nil

	for i := range p.inputs {
		p.inputs[i].Blur()
	}
}

func (p *ratingsPage) focus(i int) tea.Cmd {
	p.focusIndex = i

	var cmd tea.Cmd

	for j := range p.inputs {
		if j == i {
			cmd = p.inputs[j].Focus()
			p.inputs[j].PromptStyle = focusedStyle
			p.inputs[j].TextStyle = focusedStyle

			continue
		}

		p.inputs[j].Blur()
		p.inputs[j].PromptStyle = noStyle
		p.inputs[j].TextStyle = noStyle
	}

	return cmd
}

func (p *ratingsPage) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(p.inputs))
	for i := range p.inputs {
		p.inputs[i], cmds[i] = p.inputs[i].Update(msg)
	}

	return tea.Batch(cmds...)
}

func (p *ratingsPage) submit() tea.Cmd {
	if p.ctrl.State().Mutating {
		return nil
	}

	in, err := staging.RatingInput(p.contractor.ID, map[string]string{
		staging.FieldScore:   p.inputs[0].Value(),
		staging.FieldComment: p.inputs[1].Value(),
	})
	if err != nil {
		p.errs = api.FieldErrors(err)

		p.env.notifier.Error(api.UserMessage(err))

		return nil
	}

	p.errs = nil
	client := p.env.Client

	return p.ctrl.MutateCmd(p.ctx, resource.Mutation[[]model.Rating]{
		Name: "rate contractor",
		Do: func(ctx context.Context) error {
			_, err := client.CreateRating(ctx, in)
			return err
		},
		Success: "Thanks for your rating",
		Refetch: true,
	})
}

func (p *ratingsPage) View() string {
	st := p.ctrl.State()
	c := p.contractor

	var sb strings.Builder

	sb.WriteString(headerStyle.Render(c.Name) + " " + mutedStyle.Render(c.Company) + "\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("%s, %s · ★ %.1f from %d review(s)", c.City, c.State, c.Rating, c.Reviews)) + "\n\n")

	switch {
	case !st.Loaded && st.Loading:
		sb.WriteString("  Loading ratings...\n")
	case !st.Loaded && st.Err != nil:
		sb.WriteString("  " + errorStyle.Render("✗ "+api.UserMessage(st.Err)) + "\n")
	case len(st.Data) == 0:
		sb.WriteString("  " + mutedStyle.Render("No ratings yet") + "\n")
	}

	for _, r := range st.Data {
		line := strings.Repeat("★", r.Score) + strings.Repeat("☆", max(5-r.Score, 0))
		if r.Author != "" {
			line += " " + r.Author
		}

		line += mutedStyle.Render(" " + r.CreatedAt.Format("2006-01-02"))
		sb.WriteString(itemStyle.Render(line) + "\n")

		if r.Comment != "" {
			sb.WriteString(itemStyle.Render("  "+r.Comment) + "\n")
		}
	}

	if p.adding {
		sb.WriteString("\n" + headerStyle.Render("Add a rating") + "\n")
		sb.WriteString(fmt.Sprintf(fmtRow, blurredStyle.Render("Score:"), p.inputs[0].View()))

		if msg := p.errs[staging.FieldScore]; msg != "" {
			sb.WriteString("   " + errorStyle.Render(msg) + "\n")
		}

		sb.WriteString(fmt.Sprintf(fmtRow, blurredStyle.Render("Comment:"), p.inputs[1].View()))

		if msg := p.errs[staging.FieldComment]; msg != "" {
			sb.WriteString("   " + errorStyle.Render(msg) + "\n")
		}

		button := focusedButton
		if st.Mutating {
			button = busyButton
		}

		sb.WriteString("\n " + button + "\n")
		sb.WriteString("\n" + helpStyle.Render("tab: next field • enter/ctrl+s: submit • esc: cancel"))
	} else {
		sb.WriteString("\n" + helpStyle.Render("a: add rating • r: reload • esc: back"))
	}

	return docStyle.Render(sb.String())
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
)

var (
	profileNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true)

	profileRoleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("33"))
)

var profileFields = []struct {
	label string
	get   func(model.Profile) string
}{
	{"Name", func(p model.Profile) string { return p.Name }},
	{"Company", func(p model.Profile) string { return p.Company }},
	{"Phone", func(p model.Profile) string { return p.Phone }},
	{"City", func(p model.Profile) string { return p.City }},
	{"State", func(p model.Profile) string { return p.State }},
	{"Zip", func(p model.Profile) string { return p.Zip }},
}

// profilePage shows the signed-in account and edits its contact details.
type profilePage struct {
	env        *env
	ctx        context.Context
	cancel     context.CancelFunc
	ctrl       *resource.Controller[*model.Profile]
	editing    bool
	inputs     []textinput.Model
	focusIndex int
}

func newProfilePage(e *env) *profilePage {
	ctx, cancel := context.WithCancel(e.ctx)

	return &profilePage{
		env:    e,
		ctx:    ctx,
		cancel: cancel,
		ctrl: resource.New(e.Client.GetProfile, resource.Options{
			Name:      "profile",
			Notifier:  e.notifier,
			Navigator: e.nav,
			Logger:    e.Logger,
		}),
	}
}

func (p *profilePage) Title() string { return "Profile" }

func (p *profilePage) Init() tea.Cmd {
	return p.ctrl.FetchCmd(p.ctx)
}

func (p *profilePage) Close() {
	p.cancel()
}

func (p *profilePage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.ctrl.Apply(msg); handled {
		if m, ok := msg.(resource.MutatedMsg[*model.Profile]); ok && m.Err == nil {
			p.editing = false
		}

		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		if p.editing {
			return p, p.updateInputs(msg)
		}

		return p, nil
	}

	if !p.editing {
		switch key.String() {
		case "esc", "q":
			return p, back(false)
		case "r":
			return p, p.ctrl.FetchCmd(p.ctx)
		case "e":
			if st := p.ctrl.State(); st.Loaded {
				return p, p.edit(*st.Data)
			}
		}

		return p, nil
	}

	switch s := key.String(); s {
	case "esc":
		p.editing = false
		return p, nil
	case "ctrl+s":
		return p, p.save()
	case "tab", "shift+tab", "up", "down", "enter":
		if s == "up" || s == "shift+tab" {
			return p, p.focus(p.focusIndex - 1)
		}

		return p, p.focus(p.focusIndex + 1)
	}

	return p, p.updateInputs(msg)
}

func (p *profilePage) edit(current model.Profile) tea.Cmd {
	p.editing = true
	p.inputs = make([]textinput.Model, len(profileFields))

	for i, f := range profileFields {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 120
		t.SetValue(f.get(current))
		p.inputs[i] = t
	}

	return p.focus(0)
}

func (p *profilePage) focus(i int) tea.Cmd {
	if i >= len(p.inputs) {
		i = 0
	} else if i < 0 {
		i = len(p.inputs) - 1
	}

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

func (p *profilePage) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(p.inputs))
	for i := range p.inputs {
		p.inputs[i], cmds[i] = p.inputs[i].Update(msg)
	}

	return tea.Batch(cmds...)
}

// save sends only the fields that changed.
func (p *profilePage) save() tea.Cmd {
	st := p.ctrl.State()
	if st.Mutating || !st.Loaded {
		return nil
	}

	var in api.ProfileUpdate

	targets := []**string{&in.Name, &in.Company, &in.Phone, &in.City, &in.State, &in.Zip}
	changed := false

	for i, f := range profileFields {
		value := strings.TrimSpace(p.inputs[i].Value())
		if value != f.get(*st.Data) {
			*targets[i] = &value
			changed = true
		}
	}

	if !changed {
		p.editing = false
		return nil
	}

	var saved *model.Profile

	client := p.env.Client

	return p.ctrl.MutateCmd(p.ctx, resource.Mutation[*model.Profile]{
		Name: "update profile",
		Do: func(ctx context.Context) error {
			var err error

			saved, err = client.UpdateProfile(ctx, in)

			return err
		},
		Success: "Profile saved",
		Patch: func(*model.Profile) *model.Profile {
			return saved
		},
	})
}

func (p *profilePage) View() string {
	st := p.ctrl.State()

	switch {
	case !st.Loaded && st.Loading:
		return docStyle.Render("Loading profile...")
	case !st.Loaded && st.Err != nil:
		return docStyle.Render(errorStyle.Render("✗ " + api.UserMessage(st.Err)))
	case !st.Loaded:
		return ""
	}

	pr := st.Data

	var sb strings.Builder

	sb.WriteString(profileNameStyle.Render(pr.Name) + " " + profileRoleStyle.Render(pr.Role.Label()) + "\n")
	sb.WriteString(mutedStyle.Render(pr.Email) + "\n\n")

	for i, f := range profileFields {
		if p.editing {
			sb.WriteString(fmt.Sprintf(fmtRow, blurredStyle.Render(f.label+":"), p.inputs[i].View()))
			continue
		}

		value := f.get(*pr)
		if value == "" {
			value = "—"
		}

		sb.WriteString(fmt.Sprintf("  %-12s %s\n", blurredStyle.Render(f.label+":"), value))
	}

	if len(pr.Categories) > 0 && !p.editing {
		names := make([]string, len(pr.Categories))
		for i, c := range pr.Categories {
			names[i] = c.Name
		}

		sb.WriteString(fmt.Sprintf("  %-12s %s\n", blurredStyle.Render("Trades:"), strings.Join(names, ", ")))
	}

	if p.editing {
		button := focusedButton
		if st.Mutating {
			button = busyButton
		}

		sb.WriteString("\n " + button + "\n\n" + helpStyle.Render("tab: next field • ctrl+s: save • esc: cancel"))
	} else {
		sb.WriteString("\n" + helpStyle.Render("e: edit • r: reload • esc: back"))
	}

	return docStyle.Render(sb.String())
}

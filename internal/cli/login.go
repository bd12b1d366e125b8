package cli

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
)

type loginState int

const (
	stateEditing loginState = iota
	stateSigningIn
)

type loginResultMsg struct {
	user model.Profile
	err  error
}

// loginPage collects email and password and stores the returned token.
type loginPage struct {
	env        *env
	ctx        context.Context
	cancel     context.CancelFunc
	inputs     []textinput.Model
	focusIndex int
	spinner    spinner.Model
	state      loginState
	err        string
}

func newLoginPage(e *env) *loginPage {
	ctx, cancel := context.WithCancel(e.ctx)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	p := &loginPage{
		env:     e,
		ctx:     ctx,
		cancel:  cancel,
		inputs:  make([]textinput.Model, 2),
		spinner: s,
	}

	var t textinput.Model
	for i := range p.inputs {
		t = textinput.New()
		t.Cursor.Style = focusedStyle
		t.CharLimit = 128

		switch i {
		case 0:
			t.Placeholder = "you@example.com"
			t.Focus()
			t.PromptStyle = focusedStyle
			t.TextStyle = focusedStyle

			// Offer the last account after a session expired.
			if s, err := e.Session.Current(); err == nil && s != nil {
				t.SetValue(s.Email)
			}
		case 1:
			t.Placeholder = "password"
			t.EchoMode = textinput.EchoPassword
			t.EchoCharacter = '•'
		}

		p.inputs[i] = t
	}

	if p.inputs[0].Value() != "" {
		p.focus(1)
	}

	return p
}

func (p *loginPage) Title() string { return "Sign in" }

func (p *loginPage) Init() tea.Cmd {
	return textinput.Blink
}

func (p *loginPage) Close() {
	p.cancel()
}

func (p *loginPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if p.state != stateSigningIn {
			return p, nil
		}

		var cmd tea.Cmd

		p.spinner, cmd = p.spinner.Update(msg)

		return p, cmd

	case loginResultMsg:
		p.state = stateEditing

		if msg.err != nil {
			if api.IsCanceled(msg.err) {
				return p, nil
			}

			p.err = api.UserMessage(msg.err)
			p.env.notifier.Error(p.err)
			p.inputs[1].SetValue("")

			return p, nil
		}

		p.env.notifier.Success("Signed in as " + msg.user.Email)

		return p, reset(newMenuPage(p.env))

	case tea.KeyMsg:
		if p.state == stateSigningIn {
			return p, nil
		}

		switch s := msg.String(); s {
		case "esc":
			return p, back(false)

		case "tab", "shift+tab", "up", "down":
			if s == "up" || s == "shift+tab" {
				return p, p.focus(p.focusIndex - 1)
			}

			return p, p.focus(p.focusIndex + 1)

		case "enter":
			if p.focusIndex == 0 {
				return p, p.focus(1)
			}

			return p, p.submit()
		}
	}

	cmds := make([]tea.Cmd, len(p.inputs))
	for i := range p.inputs {
		p.inputs[i], cmds[i] = p.inputs[i].Update(msg)
	}

	return p, tea.Batch(cmds...)
}

func (p *loginPage) focus(i int) tea.Cmd {
	if i >= len(p.inputs) {
		i = 0
	} else if i < 0 {
		i = len(p.inputs) - 1
	}

	p.focusIndex = i

	cmds := make([]tea.Cmd, len(p.inputs))
	for j := range p.inputs {
		if j == i {
			cmds[j] = p.inputs[j].Focus()
			p.inputs[j].PromptStyle = focusedStyle
			p.inputs[j].TextStyle = focusedStyle

			continue
		}

		p.inputs[j].Blur()
		p.inputs[j].PromptStyle = noStyle
		p.inputs[j].TextStyle = noStyle
	}

	return tea.Batch(cmds...)
}

func (p *loginPage) submit() tea.Cmd {
	email := strings.TrimSpace(p.inputs[0].Value())
	password := p.inputs[1].Value()

	if email == "" || password == "" {
		p.err = "Email and password are required"
		p.env.notifier.Error(p.err)

		return nil
	}

	p.err = ""
	p.state = stateSigningIn

	ctx, client, sess, logger := p.ctx, p.env.Client, p.env.Session, p.env.Logger

	signIn := func() tea.Msg {
		res, err := client.Login(ctx, email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}

		if err := sess.SignIn(res.Token, res.User); err != nil {
			return loginResultMsg{err: err}
		}

		logger.Info("signed in", slog.String("email", res.User.Email), slog.String("role", string(res.User.Role)))

		return loginResultMsg{user: res.User}
	}

	return tea.Batch(p.spinner.Tick, signIn)
}

func (p *loginPage) View() string {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Sign in to bidmatch") + "\n")
	sb.WriteString(mutedStyle.Render(p.env.Client.BaseURL()) + "\n\n")
	sb.WriteString(" " + blurredStyle.Render("Email:") + "\n " + p.inputs[0].View() + "\n\n")
	sb.WriteString(" " + blurredStyle.Render("Password:") + "\n " + p.inputs[1].View() + "\n\n")

	if p.state == stateSigningIn {
		sb.WriteString(" " + p.spinner.View() + " Signing in...\n\n")
	} else if p.err != "" {
		sb.WriteString(" " + errorStyle.Render("✗ "+p.err) + "\n\n")
	}

	sb.WriteString(helpStyle.Render("tab: next field • enter: sign in • ctrl+c: quit"))

	return sb.String()
}

package cli

import (
	"context"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/notify"
	"github.com/inovacc/bidmatch/internal/preview"
	"github.com/inovacc/bidmatch/internal/session"
)

// Page is one screen on the App stack.
type Page interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Page, tea.Cmd)
	View() string
	Title() string

	// Close abandons in-flight requests and releases staged files.
	Close()
}

// Deps are the collaborators every page is built from.
type Deps struct {
	Client   *api.Client
	Session  *session.Context
	Previews *preview.Registry
	Logger   *slog.Logger

	// DebounceDelay is the search quiet window.
	DebounceDelay time.Duration

	ToastTTL time.Duration
	ToastCap int

	// Now overrides the toast clock in tests.
	Now func() time.Time
}

type navOp int

const (
	navPush navOp = iota
	navBack
	navReset
)

type navMsg struct {
	op      navOp
	page    Page
	refresh bool
}

// refreshMsg is delivered to the page uncovered by a back navigation that
// asked for a reload.
type refreshMsg struct{}

func push(p Page) tea.Cmd {
	return func() tea.Msg { return navMsg{op: navPush, page: p} }
}

func back(refresh bool) tea.Cmd {
	return func() tea.Msg { return navMsg{op: navBack, refresh: refresh} }
}

func reset(p Page) tea.Cmd {
	return func() tea.Msg { return navMsg{op: navReset, page: p} }
}

// router records login redirects requested by resource controllers. The App
// applies them after the current Update returns.
type router struct {
	pending bool
}

func (r *router) ToLogin() { r.pending = true }

// env is what pages receive: the deps plus the shared notifier and router.
type env struct {
	Deps

	ctx      context.Context
	notifier *notify.Dispatcher
	nav      *router
}

// App is the root dashboard model.
type App struct {
	env    *env
	cancel context.CancelFunc
	stack  []Page
	toasts *notify.Queue

	ticking  bool
	width    int
	height   int
	quitting bool
}

// NewApp creates the dashboard. It opens on the menu when a credential is
// available and on the login page otherwise.
func NewApp(ctx context.Context, deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(ctx)

	toasts := notify.NewQueue(notify.QueueOptions{TTL: deps.ToastTTL, Cap: deps.ToastCap, Now: deps.Now})

	e := &env{
		Deps:     deps,
		ctx:      ctx,
		notifier: notify.NewDispatcher(deps.Logger, toasts, notify.LogSender{Logger: deps.Logger}),
		nav:      &router{},
	}

	a := &App{env: e, cancel: cancel, toasts: toasts}

	if token, err := deps.Session.Token(); err != nil || token == "" {
		a.stack = []Page{newLoginPage(e)}
	} else {
		a.stack = []Page{newMenuPage(e)}
	}

	return a
}

// Init starts the first page.
func (a *App) Init() tea.Cmd {
	return a.top().Init()
}

func (a *App) top() Page {
	return a.stack[len(a.stack)-1]
}

// Top returns the visible page.
func (a *App) Top() Page {
	return a.top()
}

// Depth returns the number of stacked pages.
func (a *App) Depth() int {
	return len(a.stack)
}

// Toasts returns the visible notifications.
func (a *App) Toasts() []notify.Toast {
	return a.toasts.Items()
}

// Update routes msg and applies navigation.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.Close()
			return a, tea.Quit
		case "ctrl+x":
			a.toasts.DismissAll()
			return a, nil
		}

		p, cmd := a.top().Update(msg)
		a.stack[len(a.stack)-1] = p
		cmds = append(cmds, cmd)

	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		cmds = append(cmds, a.broadcast(msg))

	case notify.ExpireMsg:
		cmd := a.toasts.Update(msg)
		a.ticking = cmd != nil

		return a, cmd

	case navMsg:
		cmds = append(cmds, a.navigate(msg))

	default:
		cmds = append(cmds, a.broadcast(msg))
	}

	if a.env.nav.pending {
		a.env.nav.pending = false

		if _, onLogin := a.top().(*loginPage); !onLogin {
			cmds = append(cmds, a.navigate(navMsg{op: navReset, page: newLoginPage(a.env)}))
		}
	}

	if !a.ticking && a.toasts.Len() > 0 {
		if cmd := a.toasts.TickCmd(); cmd != nil {
			a.ticking = true
			cmds = append(cmds, cmd)
		}
	}

	if a.quitting {
		return a, tea.Quit
	}

	return a, tea.Batch(cmds...)
}

// broadcast sends a non-key message to every live page.
func (a *App) broadcast(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(a.stack))

	for i := range a.stack {
		a.stack[i], cmds[i] = a.stack[i].Update(msg)
	}

	return tea.Batch(cmds...)
}

func (a *App) navigate(msg navMsg) tea.Cmd {
	switch msg.op {
	case navPush:
		a.env.Logger.Debug("navigate", slog.String("to", msg.page.Title()))
		a.stack = append(a.stack, msg.page)

		return a.start(msg.page)

	case navBack:
		if len(a.stack) == 1 {
			a.quitting = true
			return nil
		}

		a.top().Close()
		a.stack = a.stack[:len(a.stack)-1]

		if msg.refresh {
			p, cmd := a.top().Update(refreshMsg{})
			a.stack[len(a.stack)-1] = p

			return cmd
		}

		return nil

	case navReset:
		a.env.Logger.Debug("navigate", slog.String("to", msg.page.Title()), slog.Bool("reset", true))

		for _, p := range a.stack {
			p.Close()
		}

		a.stack = []Page{msg.page}

		return a.start(msg.page)
	}

	return nil
}

// start initialises p and replays the last known window size.
func (a *App) start(p Page) tea.Cmd {
	cmds := []tea.Cmd{p.Init()}

	if a.width > 0 {
		var cmd tea.Cmd

		a.stack[len(a.stack)-1], cmd = p.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// Close tears down every page and cancels outstanding requests.
func (a *App) Close() {
	for _, p := range a.stack {
		p.Close()
	}

	a.cancel()
}

// View renders the top page with the toast stack underneath.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	crumbs := make([]string, len(a.stack))
	for i, p := range a.stack {
		crumbs[i] = p.Title()
	}

	var sb strings.Builder

	sb.WriteString(mutedStyle.Render(strings.Join(crumbs, " › ")) + "\n")
	sb.WriteString(a.top().View())

	if toasts := renderToasts(a.toasts.Items()); toasts != "" {
		sb.WriteString("\n" + lipgloss.NewStyle().MarginLeft(2).Render(toasts))
	}

	return sb.String()
}

// Run starts the dashboard on the terminal and blocks until it exits.
func Run(ctx context.Context, deps Deps) error {
	app := NewApp(ctx, deps)
	defer app.Close()

	_, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	return err
}

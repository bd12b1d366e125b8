package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
)

type menuItem struct {
	title       string
	description string
	action      string
}

func (i menuItem) FilterValue() string { return i.title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(menuItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%d. %s", index+1, i.title)
	if i.description != "" {
		str += " " + mutedStyle.Render(i.description)
	}

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + s[0])
		}
	}

	_, _ = fmt.Fprint(w, fn(str))
}

// menuItems lists the sections available to role. Project management is
// only offered to general contractors.
func menuItems(role model.Role) []list.Item {
	items := []list.Item{}

	if role == "" || role.CanPostProjects() {
		items = append(items,
			menuItem{title: "Projects", description: "Post and manage jobs", action: "projects"},
			menuItem{title: "New Project", description: "Post a new job", action: "new-project"},
		)
	}

	return append(items,
		menuItem{title: "Find Contractors", description: "Search by name, trade or city", action: "contractors"},
		menuItem{title: "Subscriptions", description: "Plans and membership", action: "subscriptions"},
		menuItem{title: "Transactions", description: "Payment history", action: "transactions"},
		menuItem{title: "Profile", description: "Your account", action: "profile"},
		menuItem{title: "Sign Out", description: "Forget the stored credential", action: "logout"},
		menuItem{title: "Exit", action: "exit"},
	)
}

type menuPage struct {
	env  *env
	list list.Model
	role model.Role
}

func newMenuPage(e *env) *menuPage {
	role := e.Session.Role()

	const defaultWidth = 20

	l := list.New(menuItems(role), itemDelegate{}, defaultWidth, 14)
	l.Title = "bidmatch"

	if role != "" {
		l.Title += " - " + role.Label()
	}

	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	return &menuPage{env: e, list: l, role: role}
}

func (p *menuPage) Title() string { return "Menu" }

func (p *menuPage) Init() tea.Cmd { return nil }

func (p *menuPage) Close() {}

func (p *menuPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetWidth(msg.Width)

		return p, nil

	case loggedOutMsg:
		if msg.err != nil {
			p.env.notifier.Error("Could not clear the stored credential: " + msg.err.Error())
			return p, nil
		}

		p.env.notifier.Info("Signed out")

		return p, reset(newLoginPage(p.env))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return p, tea.Quit

		case "enter":
			if i, ok := p.list.SelectedItem().(menuItem); ok {
				return p, p.open(i.action)
			}

			return p, nil
		}
	}

	var cmd tea.Cmd

	p.list, cmd = p.list.Update(msg)

	return p, cmd
}

func (p *menuPage) open(action string) tea.Cmd {
	switch action {
	case "projects":
		return push(newProjectsPage(p.env))
	case "new-project":
		return push(newProjectFormPage(p.env, nil))
	case "contractors":
		return push(newContractorsPage(p.env))
	case "subscriptions":
		return push(newSubscriptionsPage(p.env))
	case "transactions":
		return push(newTransactionsPage(p.env))
	case "profile":
		return push(newProfilePage(p.env))
	case "logout":
		return p.logout()
	case "exit":
		return tea.Quit
	}

	return nil
}

type loggedOutMsg struct {
	err error
}

// logout revokes the token server-side on a best-effort basis and always
// forgets it locally.
func (p *menuPage) logout() tea.Cmd {
	e := p.env

	return func() tea.Msg {
		if err := e.Client.Logout(e.ctx); err != nil && !api.IsAuth(err) {
			e.Logger.Warn("server logout failed", slog.Any("error", err))
		}

		return loggedOutMsg{err: e.Session.Logout()}
	}
}

func (p *menuPage) View() string {
	return "\n" + p.list.View()
}

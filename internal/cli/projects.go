package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
)

const projectsPageKey = "projects.page"

type projectItem struct {
	project model.Project
}

func (i projectItem) Title() string {
	title := i.project.Location()
	if name := i.project.CategoryName(); name != "" {
		title = name + " · " + title
	}

	return title + badge(i.project.Status == model.ProjectActive, string(i.project.Status))
}

func (i projectItem) Description() string {
	desc := fmt.Sprintf("#%d | Start %s | End %s", i.project.ID, i.project.StartDate, i.project.EndDate)

	if n := len(i.project.Attachments); n > 0 {
		desc = fmt.Sprintf("%s | %d file(s)", desc, n)
	}

	return desc
}

func (i projectItem) FilterValue() string {
	return i.project.Location()
}

// projectsPage lists the signed-in contractor's projects one server page
// at a time.
type projectsPage struct {
	env        *env
	ctx        context.Context
	cancel     context.CancelFunc
	ctrl       *resource.Controller[*api.Page[model.Project]]
	list       list.Model
	page       int
	confirming *model.Project
}

func newProjectsPage(e *env) *projectsPage {
	ctx, cancel := context.WithCancel(e.ctx)

	p := &projectsPage{env: e, ctx: ctx, cancel: cancel, page: 1}

	if found, err := e.Session.Selection(projectsPageKey, &p.page); err != nil || !found || p.page < 1 {
		p.page = 1
	}

	p.ctrl = resource.New(func(ctx context.Context) (*api.Page[model.Project], error) {
		return e.Client.ListProjects(ctx, p.page)
	}, resource.Options{
		Name:      "projects",
		Notifier:  e.notifier,
		Navigator: e.nav,
		Logger:    e.Logger,
	})

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	p.list = l

	return p
}

func (p *projectsPage) Title() string { return "Projects" }

func (p *projectsPage) Init() tea.Cmd {
	return p.ctrl.FetchCmd(p.ctx)
}

func (p *projectsPage) Close() {
	p.cancel()
}

func (p *projectsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.ctrl.Apply(msg); handled {
		p.sync()
		return p, cmd
	}

	switch msg := msg.(type) {
	case refreshMsg:
		return p, p.ctrl.FetchCmd(p.ctx)

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		p.list.SetSize(msg.Width-h, msg.Height-v-4)

		return p, nil

	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}

		if p.confirming != nil {
			return p, p.confirm(msg.String())
		}

		switch msg.String() {
		case "esc", "q":
			return p, back(false)
		case "r":
			return p, p.ctrl.FetchCmd(p.ctx)
		case "n":
			return p, push(newProjectFormPage(p.env, nil))
		case "enter":
			if sel, ok := p.selected(); ok {
				return p, push(newProjectDetailPage(p.env, sel.ID))
			}

			return p, nil
		case "e":
			if sel, ok := p.selected(); ok {
				return p, push(newProjectFormPage(p.env, &sel.ID))
			}

			return p, nil
		case "d":
			if sel, ok := p.selected(); ok && !p.ctrl.State().Mutating {
				p.confirming = &sel
			}

			return p, nil
		case "]", "pgdown":
			return p, p.turn(1)
		case "[", "pgup":
			return p, p.turn(-1)
		}
	}

	var cmd tea.Cmd

	p.list, cmd = p.list.Update(msg)

	return p, cmd
}

func (p *projectsPage) selected() (model.Project, bool) {
	i, ok := p.list.SelectedItem().(projectItem)
	return i.project, ok
}

// confirm handles the y/n answer to a pending delete. The row is only
// removed after the server confirmed the delete.
func (p *projectsPage) confirm(key string) tea.Cmd {
	target := *p.confirming
	p.confirming = nil

	if key != "y" && key != "Y" {
		return nil
	}

	client := p.env.Client

	return p.ctrl.MutateCmd(p.ctx, resource.Mutation[*api.Page[model.Project]]{
		Name: "delete project",
		Do: func(ctx context.Context) error {
			return client.DeleteProject(ctx, target.ID)
		},
		Success: "Project deleted",
		Patch: func(page *api.Page[model.Project]) *api.Page[model.Project] {
			return page.Filter(func(pr model.Project) bool { return pr.ID != target.ID })
		},
	})
}

func (p *projectsPage) turn(delta int) tea.Cmd {
	st := p.ctrl.State()
	if !st.Loaded || st.Loading {
		return nil
	}

	next := p.page + delta
	if next < 1 || next > st.Data.LastPage {
		return nil
	}

	p.page = next

	if err := p.env.Session.SetSelection(projectsPageKey, p.page); err != nil {
		p.env.Logger.Debug("failed to remember page", slog.Any("error", err))
	}

	return p.ctrl.FetchCmd(p.ctx)
}

// sync copies the controller state into the list.
func (p *projectsPage) sync() {
	st := p.ctrl.State()
	if !st.Loaded || st.Data == nil {
		return
	}

	items := make([]list.Item, len(st.Data.Items))
	for i, pr := range st.Data.Items {
		items[i] = projectItem{project: pr}
	}

	p.list.SetItems(items)
	p.list.Title = fmt.Sprintf("Projects (page %d of %d, %d total)", st.Data.CurrentPage, st.Data.LastPage, st.Data.Total)
}

func (p *projectsPage) View() string {
	st := p.ctrl.State()

	switch {
	case st.Redirected:
		return docStyle.Render(mutedStyle.Render("Session expired."))
	case !st.Loaded && st.Loading:
		return docStyle.Render("Loading projects...")
	case !st.Loaded && st.Err != nil:
		return docStyle.Render(errorStyle.Render("✗ "+api.UserMessage(st.Err)) + "\n\n" + helpStyle.Render("r: retry • esc: back"))
	}

	var sb strings.Builder

	sb.WriteString(p.list.View())

	if p.confirming != nil {
		sb.WriteString("\n" + errorStyle.Render(fmt.Sprintf("Delete project #%d in %s? (y/n)", p.confirming.ID, p.confirming.Location())))
	} else if st.Mutating {
		sb.WriteString("\n" + mutedStyle.Render("Deleting..."))
	}

	sb.WriteString("\n" + helpStyle.Render("enter: open • n: new • e: edit • d: delete • [/]: page • r: reload • esc: back"))

	return docStyle.Render(sb.String())
}

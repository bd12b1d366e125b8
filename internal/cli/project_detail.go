package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
	"github.com/inovacc/bidmatch/internal/richtext"
)

type projectDetailPage struct {
	env    *env
	ctx    context.Context
	cancel context.CancelFunc
	id     int64
	ctrl   *resource.Controller[*model.Project]
}

func newProjectDetailPage(e *env, id int64) *projectDetailPage {
	ctx, cancel := context.WithCancel(e.ctx)

	return &projectDetailPage{
		env:    e,
		ctx:    ctx,
		cancel: cancel,
		id:     id,
		ctrl: resource.New(func(ctx context.Context) (*model.Project, error) {
			return e.Client.GetProject(ctx, id)
		}, resource.Options{
			Name:      "project",
			Notifier:  e.notifier,
			Navigator: e.nav,
			Logger:    e.Logger,
		}),
	}
}

func (p *projectDetailPage) Title() string { return fmt.Sprintf("Project #%d", p.id) }

func (p *projectDetailPage) Init() tea.Cmd {
	return p.ctrl.FetchCmd(p.ctx)
}

func (p *projectDetailPage) Close() {
	p.cancel()
}

func (p *projectDetailPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.ctrl.Apply(msg); handled {
		return p, cmd
	}

	switch msg := msg.(type) {
	case refreshMsg:
		return p, p.ctrl.FetchCmd(p.ctx)
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return p, back(false)
		case "r":
			return p, p.ctrl.FetchCmd(p.ctx)
		case "e":
			if p.ctrl.State().Loaded {
				return p, push(newProjectFormPage(p.env, &p.id))
			}
		}
	}

	return p, nil
}

func (p *projectDetailPage) View() string {
	st := p.ctrl.State()

	switch {
	case !st.Loaded && st.Loading:
		return docStyle.Render("Loading project...")
	case !st.Loaded && st.Err != nil:
		return docStyle.Render(errorStyle.Render("✗ " + api.UserMessage(st.Err)))
	case !st.Loaded:
		return ""
	}

	pr := st.Data

	var sb strings.Builder

	sb.WriteString(headerStyle.Render(pr.Location()) + badge(pr.Status == model.ProjectActive, string(pr.Status)) + "\n\n")

	row := func(label, value string) {
		if value == "" {
			value = "—"
		}

		sb.WriteString(fmt.Sprintf("  %-18s %s\n", blurredStyle.Render(label+":"), value))
	}

	row("Category", pr.CategoryName())
	row("Estimates due", pr.EstimateDueDate.String())
	row("Start", pr.StartDate.String())
	row("End", pr.EndDate.String())
	row("Contact", contactSummary(pr.ContactMethods))

	desc, err := richtext.ToMarkdown(pr.Description)
	if err != nil {
		desc = richtext.PlainText(pr.Description)
	}

	sb.WriteString("\n" + blurredStyle.Render("  Description") + "\n")

	for _, line := range strings.Split(desc, "\n") {
		sb.WriteString("  " + line + "\n")
	}

	if len(pr.Attachments) > 0 {
		sb.WriteString("\n" + blurredStyle.Render("  Attachments") + "\n")

		for _, a := range pr.Attachments {
			line := "  • " + linkStyle.Render(a.File)
			if a.Description != "" {
				line += " " + mutedStyle.Render(a.Description)
			}

			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString("\n" + helpStyle.Render("e: edit • r: reload • esc: back"))

	return docStyle.Render(sb.String())
}

func contactSummary(c model.ContactMethods) string {
	var out []string

	if c.Email {
		out = append(out, "email")
	}

	if c.Phone {
		out = append(out, "phone")
	}

	if c.Text {
		out = append(out, "text")
	}

	return strings.Join(out, ", ")
}

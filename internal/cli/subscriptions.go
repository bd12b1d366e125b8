package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
)

type subscriptionsPage struct {
	env        *env
	ctx        context.Context
	cancel     context.CancelFunc
	subs       *resource.Controller[[]model.Subscription]
	plans      *resource.Controller[[]model.Plan]
	cursor     int
	confirming *model.Subscription
}

func newSubscriptionsPage(e *env) *subscriptionsPage {
	ctx, cancel := context.WithCancel(e.ctx)

	opts := resource.Options{Name: "subscriptions", Notifier: e.notifier, Navigator: e.nav, Logger: e.Logger}
	subs := resource.New(e.Client.ListSubscriptions, opts)

	opts.Name = "plans"
	plans := resource.New(e.Client.ListPlans, opts)

	return &subscriptionsPage{env: e, ctx: ctx, cancel: cancel, subs: subs, plans: plans}
}

func (p *subscriptionsPage) Title() string { return "Subscriptions" }

func (p *subscriptionsPage) Init() tea.Cmd {
	return tea.Batch(p.subs.FetchCmd(p.ctx), p.plans.FetchCmd(p.ctx))
}

func (p *subscriptionsPage) Close() {
	p.cancel()
}

func (p *subscriptionsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.subs.Apply(msg); handled {
		if n := len(p.subs.State().Data); p.cursor >= n {
			p.cursor = max(n-1, 0)
		}

		return p, cmd
	}

	if cmd, handled := p.plans.Apply(msg); handled {
		return p, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	if p.confirming != nil {
		return p, p.confirm(key.String())
	}

	subs := p.subs.State().Data

	switch key.String() {
	case "esc", "q":
		return p, back(false)
	case "r":
		return p, tea.Batch(p.subs.FetchCmd(p.ctx), p.plans.FetchCmd(p.ctx))
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(subs)-1 {
			p.cursor++
		}
	case "c":
		if p.cursor < len(subs) && !p.subs.State().Mutating {
			s := subs[p.cursor]
			if !s.Cancellable() {
				p.env.notifier.Info("Only active subscriptions can be cancelled")
				return p, nil
			}

			p.confirming = &s
		}
	}

	return p, nil
}

// confirm cancels the subscription on "y". The new status is re-fetched
// rather than guessed.
func (p *subscriptionsPage) confirm(key string) tea.Cmd {
	target := *p.confirming
	p.confirming = nil

	if key != "y" && key != "Y" {
		return nil
	}

	client := p.env.Client

	return p.subs.MutateCmd(p.ctx, resource.Mutation[[]model.Subscription]{
		Name: "cancel subscription",
		Do: func(ctx context.Context) error {
			return client.CancelSubscription(ctx, target.ID)
		},
		Success: "Subscription cancelled",
		Refetch: true,
	})
}

func (p *subscriptionsPage) View() string {
	st := p.subs.State()

	var sb strings.Builder

	sb.WriteString(headerStyle.Render("Your subscriptions") + "\n\n")

	switch {
	case !st.Loaded && st.Loading:
		sb.WriteString("  Loading...\n")
	case !st.Loaded && st.Err != nil:
		sb.WriteString("  " + errorStyle.Render("✗ "+api.UserMessage(st.Err)) + "\n")
	case len(st.Data) == 0:
		sb.WriteString("  " + mutedStyle.Render("No subscriptions yet") + "\n")
	}

	for i, s := range st.Data {
		line := fmt.Sprintf("#%d %s", s.ID, s.PlanName()) + badge(s.Active, string(s.Status))
		if s.EndsAt != nil {
			line += mutedStyle.Render(" until " + s.EndsAt.Format("2006-01-02"))
		}

		if i == p.cursor {
			sb.WriteString(selectedItemStyle.Render("> "+line) + "\n")
			continue
		}

		sb.WriteString(itemStyle.Render(line) + "\n")
	}

	if p.confirming != nil {
		sb.WriteString("\n" + errorStyle.Render(fmt.Sprintf("  Cancel subscription #%d (%s)? (y/n)", p.confirming.ID, p.confirming.PlanName())) + "\n")
	} else if st.Mutating {
		sb.WriteString("\n" + mutedStyle.Render("  Cancelling...") + "\n")
	}

	sb.WriteString("\n" + headerStyle.Render("Plans") + "\n\n")

	for _, plan := range p.plans.State().Data {
		line := fmt.Sprintf("%s %s", plan.Name, mutedStyle.Render(fmt.Sprintf("$%.2f / %s", plan.Price, plan.Interval)))
		sb.WriteString(itemStyle.Render(line) + "\n")

		for _, f := range plan.Features {
			sb.WriteString(itemStyle.Render("  • "+f) + "\n")
		}
	}

	sb.WriteString("\n" + helpStyle.Render("↑/↓: select • c: cancel • r: reload • esc: back"))

	return docStyle.Render(sb.String())
}

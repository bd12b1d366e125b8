package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
)

type transactionsPage struct {
	env    *env
	ctx    context.Context
	cancel context.CancelFunc
	ctrl   *resource.Controller[*api.Page[model.Transaction]]
	table  table.Model
	page   int
}

func newTransactionsPage(e *env) *transactionsPage {
	ctx, cancel := context.WithCancel(e.ctx)

	p := &transactionsPage{env: e, ctx: ctx, cancel: cancel, page: 1}

	p.ctrl = resource.New(func(ctx context.Context) (*api.Page[model.Transaction], error) {
		return e.Client.ListTransactions(ctx, p.page)
	}, resource.Options{
		Name:      "transactions",
		Notifier:  e.notifier,
		Navigator: e.nav,
		Logger:    e.Logger,
	})

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 8},
			{Title: "Date", Width: 12},
			{Title: "Amount", Width: 12},
			{Title: "Status", Width: 10},
			{Title: "Description", Width: 36},
		}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	p.table = t

	return p
}

func (p *transactionsPage) Title() string { return "Transactions" }

func (p *transactionsPage) Init() tea.Cmd {
	return p.ctrl.FetchCmd(p.ctx)
}

func (p *transactionsPage) Close() {
	p.cancel()
}

func (p *transactionsPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.ctrl.Apply(msg); handled {
		p.sync()
		return p, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			return p, back(false)
		case "r":
			return p, p.ctrl.FetchCmd(p.ctx)
		case "]", "pgdown":
			return p, p.turn(1)
		case "[", "pgup":
			return p, p.turn(-1)
		}
	}

	var cmd tea.Cmd

	p.table, cmd = p.table.Update(msg)

	return p, cmd
}

func (p *transactionsPage) turn(delta int) tea.Cmd {
	st := p.ctrl.State()
	if !st.Loaded || st.Loading {
		return nil
	}

	next := p.page + delta
	if next < 1 || next > st.Data.LastPage {
		return nil
	}

	p.page = next

	return p.ctrl.FetchCmd(p.ctx)
}

func (p *transactionsPage) sync() {
	st := p.ctrl.State()
	if !st.Loaded || st.Data == nil {
		return
	}

	rows := make([]table.Row, len(st.Data.Items))
	for i, tx := range st.Data.Items {
		rows[i] = table.Row{
			strconv.FormatInt(tx.ID, 10),
			tx.CreatedAt.Format("2006-01-02"),
			formatAmount(tx.Amount, tx.Currency),
			tx.Status,
			tx.Description,
		}
	}

	p.table.SetRows(rows)
	p.table.SetCursor(0)
}

func formatAmount(amount float64, currency string) string {
	s := fmt.Sprintf("%.2f", amount)
	if currency != "" {
		s += " " + strings.ToUpper(currency)
	}

	return s
}

func (p *transactionsPage) View() string {
	st := p.ctrl.State()

	switch {
	case !st.Loaded && st.Loading:
		return docStyle.Render("Loading transactions...")
	case !st.Loaded && st.Err != nil:
		return docStyle.Render(errorStyle.Render("✗ " + api.UserMessage(st.Err)))
	case !st.Loaded:
		return ""
	}

	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("Payment history (page %d of %d, %d total)", st.Data.CurrentPage, st.Data.LastPage, st.Data.Total)) + "\n\n")

	if len(st.Data.Items) == 0 {
		sb.WriteString(mutedStyle.Render("No transactions") + "\n")
	} else {
		sb.WriteString(p.table.View() + "\n")
	}

	sb.WriteString("\n" + helpStyle.Render("↑/↓: scroll • [/]: page • r: reload • esc: back"))

	return docStyle.Render(sb.String())
}

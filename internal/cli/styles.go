package cli

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"
	"github.com/inovacc/bidmatch/internal/notify"
)

var (
	docStyle          = lipgloss.NewStyle().Margin(1, 2)
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noStyle      = lipgloss.NewStyle()
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

	statusBadge = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1).
			MarginLeft(1)

	activeBadge = statusBadge.
			Background(lipgloss.Color("42")).
			Foreground(lipgloss.Color("0"))

	toastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	focusedButton = focusedStyle.Render("[ Submit ]")
	blurredButton = "[ " + blurredStyle.Render("Submit") + " ]"
	busyButton    = "[ " + blurredStyle.Render("Submitting...") + " ]"
)

func severityStyle(sev notify.Severity) lipgloss.Style {
	switch sev {
	case notify.SeveritySuccess:
		return successStyle
	case notify.SeverityError:
		return errorStyle
	default:
		return infoStyle
	}
}

func renderToasts(toasts []notify.Toast) string {
	if len(toasts) == 0 {
		return ""
	}

	out := ""

	for _, t := range toasts {
		st := severityStyle(t.Severity)
		out += toastStyle.BorderForeground(st.GetForeground()).
			Render(st.Render(notify.Symbol(t.Severity))+" "+t.Message) + "\n"
	}

	return out
}

func badge(active bool, text string) string {
	if active {
		return activeBadge.Render(text)
	}

	return statusBadge.Render(text)
}

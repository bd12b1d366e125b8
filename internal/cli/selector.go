package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// option is one choice in a selector.
type option struct {
	value string
	label string
}

func (o option) FilterValue() string { return o.label }

type optionDelegate struct{}

func (d optionDelegate) Height() int                             { return 1 }
func (d optionDelegate) Spacing() int                            { return 0 }
func (d optionDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d optionDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	o, ok := listItem.(option)
	if !ok {
		return
	}

	if index == m.Index() {
		_, _ = fmt.Fprint(w, selectedItemStyle.Render("> "+o.label))
		return
	}

	_, _ = fmt.Fprint(w, itemStyle.Render(o.label))
}

// selector is a filterable dropdown. It reports the pick through the
// returned value of Update rather than a message, so the owning page
// applies it synchronously.
type selector struct {
	list    list.Model
	options []option
	open    bool
}

func newSelector(title string) selector {
	l := list.New(nil, optionDelegate{}, 40, 12)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	return selector{list: l}
}

func (s *selector) SetOptions(opts []option) {
	s.options = opts

	items := make([]list.Item, len(opts))
	for i, o := range opts {
		items[i] = o
	}

	s.list.SetItems(items)
}

// Label returns the label of value, or "" when it is not an option.
func (s *selector) Label(value string) string {
	for _, o := range s.options {
		if o.value == value {
			return o.label
		}
	}

	return ""
}

// Open shows the list with value preselected.
func (s *selector) Open(value string) {
	s.open = true
	s.list.ResetFilter()

	for i, o := range s.options {
		if o.value == value {
			s.list.Select(i)
			break
		}
	}
}

// Update handles keys while open. picked is set when the user chose an
// option; the selector closes on pick or esc.
func (s *selector) Update(msg tea.Msg) (picked *option, cmd tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && s.list.FilterState() != list.Filtering {
		switch key.String() {
		case "esc":
			s.open = false
			return nil, nil
		case "enter":
			s.open = false

			if o, ok := s.list.SelectedItem().(option); ok {
				return &o, nil
			}

			return nil, nil
		}
	}

	s.list, cmd = s.list.Update(msg)

	return nil, cmd
}

func (s *selector) View() string {
	return s.list.View()
}

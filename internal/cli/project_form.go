package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/resource"
	"github.com/inovacc/bidmatch/internal/richtext"
	"github.com/inovacc/bidmatch/internal/staging"
)

const (
	fmtRow           = " %s\n %s\n"
	lastCategoryKey  = "projects.category"
	attachInputField = "attach"
)

type rowKind int

const (
	rowText rowKind = iota
	rowCategory
	rowStatus
	rowToggle
	rowAttach
	rowAttachments
	rowSubmit
)

type formRow struct {
	kind  rowKind
	field string
	label string
	input int
}

type submittedMsg struct {
	form    *projectFormPage
	project *model.Project
	err     error
}

// projectFormPage creates a project, or edits one when editID is set.
type projectFormPage struct {
	env    *env
	ctx    context.Context
	cancel context.CancelFunc
	editID *int64

	categories *resource.Controller[[]model.Category]
	project    *resource.Controller[*model.Project]

	buf        *staging.Buffer
	rows       []formRow
	inputs     []textinput.Model
	focusIndex int
	category   selector
	attachIdx  int
}

func newProjectFormPage(e *env, editID *int64) *projectFormPage {
	ctx, cancel := context.WithCancel(e.ctx)

	opts := resource.Options{Notifier: e.notifier, Navigator: e.nav, Logger: e.Logger}

	p := &projectFormPage{
		env:      e,
		ctx:      ctx,
		cancel:   cancel,
		editID:   editID,
		category: newSelector("Category"),
	}

	opts.Name = "categories"
	p.categories = resource.New(e.Client.ListCategories, opts)

	if editID != nil {
		id := *editID
		opts.Name = "project"
		p.project = resource.New(func(ctx context.Context) (*model.Project, error) {
			return e.Client.GetProject(ctx, id)
		}, opts)
	} else {
		p.bind(staging.NewProjectForm(p.bufferOptions()))

		var last string
		if found, err := e.Session.Selection(lastCategoryKey, &last); err == nil && found {
			p.buf.SetField(staging.FieldCategory, last)
		}

		p.buf.SetField(staging.FieldContactEmail, staging.FormBool(true))
	}

	return p
}

func (p *projectFormPage) bufferOptions() staging.Options {
	return staging.Options{Previews: p.env.Previews, Notifier: p.env.notifier, Logger: p.env.Logger}
}

// bind attaches buf and builds the inputs from its fields.
func (p *projectFormPage) bind(buf *staging.Buffer) {
	p.buf = buf
	p.rows = nil
	p.inputs = nil

	text := func(field, label, placeholder string, limit int) {
		t := textinput.New()
		t.Cursor.Style = focusedStyle
		t.Placeholder = placeholder
		t.CharLimit = limit

		value := buf.Field(field)
		if field == staging.FieldDescription {
			value = richtext.PlainText(value)
		}

		t.SetValue(value)

		p.rows = append(p.rows, formRow{kind: rowText, field: field, label: label, input: len(p.inputs)})
		p.inputs = append(p.inputs, t)
	}

	text(staging.FieldCity, "City", "Austin", 64)
	text(staging.FieldState, "State", "TX", 2)
	text(staging.FieldZip, "Zip", "78701", 10)
	p.rows = append(p.rows, formRow{kind: rowCategory, field: staging.FieldCategory, label: "Category"})
	text(staging.FieldDescription, "Description", "What needs to be done", 2000)
	text(staging.FieldEstimateDueDate, "Estimates due", model.DateLayout, 10)
	text(staging.FieldStartDate, "Start date", model.DateLayout, 10)
	text(staging.FieldEndDate, "End date", model.DateLayout, 10)

	if p.editID != nil {
		p.rows = append(p.rows, formRow{kind: rowStatus, field: staging.FieldStatus, label: "Status"})
	}

	p.rows = append(p.rows,
		formRow{kind: rowToggle, field: staging.FieldContactEmail, label: "Contact by email"},
		formRow{kind: rowToggle, field: staging.FieldContactPhone, label: "Contact by phone"},
		formRow{kind: rowToggle, field: staging.FieldContactText, label: "Contact by text"},
	)

	text(attachInputField, "Add files", "paste or drop paths, then enter", 4096)
	p.rows[len(p.rows)-1].kind = rowAttach

	p.rows = append(p.rows,
		formRow{kind: rowAttachments, label: "Attachments"},
		formRow{kind: rowSubmit},
	)

	p.focus(0)
}

func (p *projectFormPage) Title() string {
	if p.editID != nil {
		return fmt.Sprintf("Edit #%d", *p.editID)
	}

	return "New project"
}

func (p *projectFormPage) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, p.categories.FetchCmd(p.ctx)}

	if p.project != nil {
		cmds = append(cmds, p.project.FetchCmd(p.ctx))
	}

	return tea.Batch(cmds...)
}

// Close cancels any pending submission and releases every staged preview.
func (p *projectFormPage) Close() {
	p.cancel()

	if p.buf != nil {
		if err := p.buf.Close(); err != nil {
			p.env.Logger.Warn("failed to release staged files", slog.Any("error", err))
		}
	}
}

func (p *projectFormPage) Update(msg tea.Msg) (Page, tea.Cmd) {
	if cmd, handled := p.categories.Apply(msg); handled {
		p.syncCategories()
		return p, cmd
	}

	if p.project != nil {
		if cmd, handled := p.project.Apply(msg); handled {
			if st := p.project.State(); st.Loaded && p.buf == nil {
				p.bind(staging.ProjectFormFrom(*st.Data, p.bufferOptions()))
			}

			return p, cmd
		}
	}

	switch msg := msg.(type) {
	case submittedMsg:
		if msg.form != p {
			return p, nil
		}

		return p, p.submitted(msg)

	case tea.KeyMsg:
		if p.buf == nil {
			if msg.String() == "esc" {
				return p, back(false)
			}

			return p, nil
		}

		if p.category.open {
			picked, cmd := p.category.Update(msg)
			if picked != nil {
				p.buf.SetField(staging.FieldCategory, picked.value)
			}

			return p, cmd
		}

		return p, p.handleKey(msg)
	}

	if p.category.open {
		_, cmd := p.category.Update(msg)
		return p, cmd
	}

	return p, p.updateInputs(msg)
}

func (p *projectFormPage) handleKey(msg tea.KeyMsg) tea.Cmd {
	row := p.rows[p.focusIndex]

	switch s := msg.String(); s {
	case "esc":
		return back(false)

	case "ctrl+s":
		return p.submit()

	case "tab", "shift+tab", "up", "down":
		if s == "up" || s == "shift+tab" {
			return p.focus(p.focusIndex - 1)
		}

		return p.focus(p.focusIndex + 1)

	case "enter", " ":
		switch row.kind {
		case rowSubmit:
			if s == "enter" {
				return p.submit()
			}
		case rowCategory:
			p.category.Open(p.buf.Field(staging.FieldCategory))
			return nil
		case rowToggle:
			on := p.buf.Field(row.field) != ""
			p.buf.SetField(row.field, staging.FormBool(!on))

			return nil
		case rowAttach:
			if s == "enter" {
				p.attach()
				return nil
			}
		case rowText:
			if s == "enter" {
				return p.focus(p.focusIndex + 1)
			}
		}

	case "left", "right":
		delta := 1
		if s == "left" {
			delta = -1
		}

		switch row.kind {
		case rowStatus:
			p.cycleStatus(delta)
			return nil
		case rowAttachments:
			if n := len(p.buf.Attachments()); n > 0 {
				p.attachIdx = (p.attachIdx + delta + n) % n
			}

			return nil
		}

	case "x", "delete", "backspace":
		if row.kind == rowAttachments {
			p.removeAttachment()
			return nil
		}
	}

	return p.updateInputs(msg)
}

func (p *projectFormPage) focus(i int) tea.Cmd {
	if i >= len(p.rows) {
		i = 0
	} else if i < 0 {
		i = len(p.rows) - 1
	}

	p.focusIndex = i

	cmds := make([]tea.Cmd, len(p.inputs))
	for _, row := range p.rows {
		if row.kind != rowText && row.kind != rowAttach {
			continue
		}

		in := &p.inputs[row.input]

		if row == p.rows[i] {
			cmds[row.input] = in.Focus()
			in.PromptStyle = focusedStyle
			in.TextStyle = focusedStyle

			continue
		}

		in.Blur()
		in.PromptStyle = noStyle
		in.TextStyle = noStyle
	}

	return tea.Batch(cmds...)
}

// updateInputs forwards msg to the inputs and copies edited values into
// the buffer.
func (p *projectFormPage) updateInputs(msg tea.Msg) tea.Cmd {
	cmds := make([]tea.Cmd, len(p.inputs))
	for i := range p.inputs {
		p.inputs[i], cmds[i] = p.inputs[i].Update(msg)
	}

	for _, row := range p.rows {
		if row.kind != rowText {
			continue
		}

		value := p.inputs[row.input].Value()

		if row.field == staging.FieldDescription {
			if richtext.PlainText(p.buf.Field(row.field)) == value {
				continue
			}

			value = richtext.FromPlainText(value)
		}

		if p.buf.Field(row.field) != value {
			p.buf.SetField(row.field, value)
		}
	}

	return tea.Batch(cmds...)
}

func (p *projectFormPage) cycleStatus(delta int) {
	statuses := model.ProjectStatuses()
	current := model.ProjectStatus(p.buf.Field(staging.FieldStatus))

	idx := 0
	for i, s := range statuses {
		if s == current {
			idx = i
			break
		}
	}

	idx = (idx + delta + len(statuses)) % len(statuses)
	p.buf.SetField(staging.FieldStatus, string(statuses[idx]))
}

func (p *projectFormPage) attachInput() *textinput.Model {
	for _, row := range p.rows {
		if row.kind == rowAttach {
			return &p.inputs[row.input]
		}
	}

	return nil
}

func (p *projectFormPage) attach() {
	in := p.attachInput()

	raw := strings.TrimSpace(in.Value())
	if raw == "" {
		return
	}

	added, err := p.buf.AddDropped(raw)
	if err != nil {
		p.env.notifier.Error(err.Error())
	}

	if len(added) > 0 {
		p.env.notifier.Info(fmt.Sprintf("%d file(s) attached", len(added)))
	}

	in.SetValue("")
}

func (p *projectFormPage) removeAttachment() {
	list := p.buf.Attachments()
	if len(list) == 0 {
		return
	}

	if p.attachIdx >= len(list) {
		p.attachIdx = len(list) - 1
	}

	if err := p.buf.Remove(list[p.attachIdx].ID); err != nil {
		p.env.notifier.Error(err.Error())
		return
	}

	if p.attachIdx > 0 && p.attachIdx >= len(list)-1 {
		p.attachIdx--
	}
}

// submit validates locally and sends the form. Nothing is sent while a
// submission is in flight or when validation fails.
func (p *projectFormPage) submit() tea.Cmd {
	if p.buf.Submitting() {
		return nil
	}

	sub, err := p.buf.BeginProject()
	if err != nil {
		if len(p.buf.Errors()) == 0 {
			p.env.notifier.Error(api.UserMessage(err))
		}

		return nil
	}

	ctx, client, editID := p.ctx, p.env.Client, p.editID

	return func() tea.Msg {
		var (
			pr  *model.Project
			err error
		)

		if editID == nil {
			pr, err = client.CreateProject(ctx, sub)
		} else {
			pr, err = client.UpdateProject(ctx, *editID, sub)
		}

		return submittedMsg{form: p, project: pr, err: err}
	}
}

func (p *projectFormPage) submitted(msg submittedMsg) tea.Cmd {
	category := p.buf.Field(staging.FieldCategory)

	p.buf.End(msg.err)

	if msg.err != nil {
		if api.IsCanceled(msg.err) {
			return nil
		}

		p.env.Logger.Warn("project submit failed", slog.Any("error", msg.err))
		p.env.notifier.Error(api.UserMessage(msg.err))

		if api.IsAuth(msg.err) {
			p.env.nav.ToLogin()
		}

		return nil
	}

	if err := p.env.Session.SetSelection(lastCategoryKey, category); err != nil {
		p.env.Logger.Debug("failed to remember category", slog.Any("error", err))
	}

	if p.editID != nil {
		p.env.notifier.Success("Project updated")
	} else {
		p.env.notifier.Success("Project created")
	}

	return back(true)
}

func (p *projectFormPage) syncCategories() {
	st := p.categories.State()
	if !st.Loaded {
		return
	}

	opts := make([]option, len(st.Data))
	for i, c := range st.Data {
		opts[i] = option{value: strconv.FormatInt(c.ID, 10), label: c.Name}
	}

	p.category.SetOptions(opts)
}

// Submitting reports whether a submission is in flight.
func (p *projectFormPage) Submitting() bool {
	return p.buf != nil && p.buf.Submitting()
}

func (p *projectFormPage) View() string {
	if p.buf == nil {
		if st := p.project.State(); st.Err != nil {
			return docStyle.Render(errorStyle.Render("✗ "+api.UserMessage(st.Err)) + "\n\n" + helpStyle.Render("esc: back"))
		}

		return docStyle.Render("Loading project...")
	}

	if p.category.open {
		return docStyle.Render(p.category.View())
	}

	var sb strings.Builder

	sb.WriteString(headerStyle.Render(p.Title()) + "\n")
	sb.WriteString(blurredStyle.Render("Tab to move between fields, ctrl+s to save") + "\n\n")

	for i, row := range p.rows {
		focused := i == p.focusIndex
		label := blurredStyle.Render(row.label + ":")

		if focused {
			label = focusedStyle.Render(row.label + ":")
		}

		switch row.kind {
		case rowText, rowAttach:
			sb.WriteString(fmt.Sprintf(fmtRow, label, p.inputs[row.input].View()))
		case rowCategory:
			value := p.category.Label(p.buf.Field(row.field))
			if value == "" {
				value = mutedStyle.Render("press enter to choose")
			}

			sb.WriteString(fmt.Sprintf(fmtRow, label, "  "+value))
		case rowStatus:
			sb.WriteString(fmt.Sprintf(fmtRow, label, "  ‹ "+p.buf.Field(row.field)+" ›"))
		case rowToggle:
			box := "[ ]"
			if p.buf.Field(row.field) != "" {
				box = "[x]"
			}

			sb.WriteString(" " + box + " " + label + "\n")
		case rowAttachments:
			sb.WriteString(" " + label + "\n" + p.attachmentsView(focused))
		case rowSubmit:
			button := blurredButton
			if p.buf.Submitting() {
				button = busyButton
			} else if focused {
				button = focusedButton
			}

			sb.WriteString("\n " + button + "\n")
		}

		if msg := p.buf.Error(row.field); msg != "" && row.field != "" {
			sb.WriteString(" " + errorStyle.Render("  "+msg) + "\n")
		}

		if row.field == staging.FieldContactText {
			if msg := p.buf.Error(staging.FieldContactMethods); msg != "" {
				sb.WriteString(" " + errorStyle.Render("  "+msg) + "\n")
			}
		}

		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render("tab/shift+tab: navigate • space: toggle • ←/→: change • x: remove file • ctrl+s: save • esc: cancel"))

	return docStyle.Render(sb.String())
}

func (p *projectFormPage) attachmentsView(focused bool) string {
	list := p.buf.Attachments()
	if len(list) == 0 {
		return "   " + mutedStyle.Render("none") + "\n"
	}

	var sb strings.Builder

	for i, a := range list {
		line := a.Name
		if a.Staged() {
			line = fmt.Sprintf("%s %s", line, mutedStyle.Render(fmt.Sprintf("(%s, %d KB, new)", a.MIME, a.Size/1024)))
		}

		if a.Preview.Valid() {
			line += " " + linkStyle.Render(a.Preview.Path)
		}

		if focused && i == p.attachIdx {
			sb.WriteString(selectedItemStyle.Render("> "+line) + "\n")
			continue
		}

		sb.WriteString(itemStyle.Render(line) + "\n")
	}

	return sb.String()
}

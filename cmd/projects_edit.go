package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/richtext"
	"github.com/inovacc/bidmatch/internal/staging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// dateFlag is a pflag.Value that accepts YYYY-MM-DD.
type dateFlag struct {
	value model.Date
	set   bool
}

var _ pflag.Value = (*dateFlag)(nil)

func (d *dateFlag) String() string {
	if !d.set {
		return ""
	}

	return d.value.String()
}

func (d *dateFlag) Set(s string) error {
	v, err := model.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("expected a date like 2025-01-31: %w", err)
	}

	d.value, d.set = v, true

	return nil
}

func (d *dateFlag) Type() string { return "date" }

// projectFlags holds the create and edit flags.
type projectFlags struct {
	city        string
	state       string
	zip         string
	category    int64
	description string
	html        bool
	due         dateFlag
	start       dateFlag
	end         dateFlag
	status      string
	contact     []string
	attach      []string
	detach      []int64
	json        bool
}

func (f *projectFlags) register(fs *pflag.FlagSet, edit bool) {
	fs.StringVar(&f.city, "city", "", "City")
	fs.StringVar(&f.state, "state", "", "Two-letter state code")
	fs.StringVar(&f.zip, "zip", "", "ZIP code")
	fs.Int64Var(&f.category, "category", 0, "Category id (see 'projects categories')")
	fs.StringVarP(&f.description, "description", "d", "", "Description (plain text unless --html)")
	fs.BoolVar(&f.html, "html", false, "Treat --description as HTML")
	fs.Var(&f.due, "due", "Estimate due date (YYYY-MM-DD)")
	fs.Var(&f.start, "start", "Start date (YYYY-MM-DD)")
	fs.Var(&f.end, "end", "End date (YYYY-MM-DD)")
	fs.StringSliceVar(&f.contact, "contact", nil, "Contact methods: email, phone, text")
	fs.StringArrayVarP(&f.attach, "attach", "a", nil, "File to attach (repeatable)")
	fs.BoolVar(&f.json, "json", false, "Output as JSON")

	if edit {
		fs.StringVar(&f.status, "status", "", "Status: active, hired, pending, completed, cancelled")
		fs.Int64SliceVar(&f.detach, "remove-attachment", nil, "Attachment id to remove (repeatable)")
	}
}

// apply copies the flags the user set into the form buffer.
func (f *projectFlags) apply(fs *pflag.FlagSet, buf *staging.Buffer) error {
	set := func(name, field, value string) {
		if fs.Changed(name) {
			buf.SetField(field, value)
		}
	}

	set("city", staging.FieldCity, f.city)
	set("state", staging.FieldState, f.state)
	set("zip", staging.FieldZip, f.zip)
	set("due", staging.FieldEstimateDueDate, f.due.String())
	set("start", staging.FieldStartDate, f.start.String())
	set("end", staging.FieldEndDate, f.end.String())
	set("status", staging.FieldStatus, f.status)

	if fs.Changed("category") {
		buf.SetField(staging.FieldCategory, strconv.FormatInt(f.category, 10))
	}

	if fs.Changed("description") {
		desc := f.description
		if !f.html {
			desc = richtext.FromPlainText(desc)
		}

		buf.SetField(staging.FieldDescription, desc)
	}

	if fs.Changed("contact") {
		methods := map[string]string{
			"email": staging.FieldContactEmail,
			"phone": staging.FieldContactPhone,
			"text":  staging.FieldContactText,
		}

		chosen := make(map[string]bool)

		for _, c := range f.contact {
			c = strings.ToLower(strings.TrimSpace(c))
			if c == "" {
				continue
			}

			if _, ok := methods[c]; !ok {
				return fmt.Errorf("unknown contact method %q (use email, phone or text)", c)
			}

			chosen[c] = true
		}

		for name, field := range methods {
			buf.SetField(field, staging.FormBool(chosen[name]))
		}
	}

	for _, id := range f.detach {
		if err := removeAttachment(buf, id); err != nil {
			return err
		}
	}

	for _, path := range f.attach {
		abs, err := expandPath(path)
		if err != nil {
			return err
		}

		if _, err := buf.AddFile(abs); err != nil {
			return err
		}
	}

	return nil
}

func removeAttachment(buf *staging.Buffer, remoteID int64) error {
	for _, a := range buf.Attachments() {
		if a.RemoteID == remoteID {
			return buf.Remove(a.ID)
		}
	}

	return fmt.Errorf("project has no attachment %d", remoteID)
}

var projectsCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"new"},
	Short:   "Post a new project",
	Long: `Post a new project. Every field is required and at least one contact
method must be chosen. Attachments are uploaded with the project.

Examples:
  bidmatch projects create --city Austin --state TX --zip 78701 \
    --category 3 -d "Replace shingles on a 2,000 sq ft roof" \
    --due 2025-03-01 --start 2025-03-10 --end 2025-03-20 \
    --contact email,phone --attach ./photos/roof.jpg`,
	Args: cobra.NoArgs,
	RunE: runProjectsCreate,
}

var projectsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a project",
	Long: `Edit a project. Only the flags you pass are changed; existing
attachments are kept unless removed with --remove-attachment.

Examples:
  bidmatch projects edit 12 --status hired
  bidmatch projects edit 12 --end 2025-04-01 --attach ./plans.pdf
  bidmatch projects edit 12 --remove-attachment 7`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectsEdit,
}

var projectsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List project categories",
	Args:  cobra.NoArgs,
	RunE:  runProjectsCategories,
}

var (
	createFlags projectFlags
	editFlags   projectFlags
)

func init() {
	projectsCmd.AddCommand(projectsCreateCmd, projectsEditCmd, projectsCategoriesCmd)

	createFlags.register(projectsCreateCmd.Flags(), false)
	editFlags.register(projectsEditCmd.Flags(), true)
}

// formOptions leaves the notifier unset: commandError already prints the
// field errors.
func formOptions() staging.Options {
	return staging.Options{Logger: rt.logger}
}

func runProjectsCreate(cmd *cobra.Command, _ []string) error {
	buf := staging.NewProjectForm(formOptions())
	defer func() { _ = buf.Close() }()

	if err := createFlags.apply(cmd.Flags(), buf); err != nil {
		return err
	}

	p, err := submitProject(cmd.Context(), buf, func(ctx context.Context, sub *api.ProjectSubmission) (*model.Project, error) {
		return rt.client.CreateProject(ctx, sub)
	})
	if err != nil {
		return err
	}

	rt.notifier.Success(fmt.Sprintf("Project #%d created", p.ID))

	if createFlags.json {
		return printJSON(cmd.OutOrStdout(), p)
	}

	printProject(cmd, p)

	return nil
}

func runProjectsEdit(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	current, err := rt.client.GetProject(cmd.Context(), id)
	if err != nil {
		return commandError(err)
	}

	buf := staging.ProjectFormFrom(*current, formOptions())
	defer func() { _ = buf.Close() }()

	if err := editFlags.apply(cmd.Flags(), buf); err != nil {
		return err
	}

	p, err := submitProject(cmd.Context(), buf, func(ctx context.Context, sub *api.ProjectSubmission) (*model.Project, error) {
		return rt.client.UpdateProject(ctx, id, sub)
	})
	if err != nil {
		return err
	}

	rt.notifier.Success(fmt.Sprintf("Project #%d updated", p.ID))

	if editFlags.json {
		return printJSON(cmd.OutOrStdout(), p)
	}

	printProject(cmd, p)

	return nil
}

// submitProject validates and sends the buffer once.
func submitProject(ctx context.Context, buf *staging.Buffer, send func(context.Context, *api.ProjectSubmission) (*model.Project, error)) (*model.Project, error) {
	var saved *model.Project

	err := buf.SubmitProject(ctx, func(ctx context.Context, sub *api.ProjectSubmission) error {
		p, err := send(ctx, sub)
		if err != nil {
			return err
		}

		saved = p

		return nil
	})
	if err != nil {
		return nil, commandError(err)
	}

	if saved == nil {
		return nil, errors.New("server returned no project")
	}

	return saved, nil
}

func runProjectsCategories(cmd *cobra.Command, _ []string) error {
	cats, err := rt.client.ListCategories(cmd.Context())
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if len(cats) == 0 {
		printEmptyResult(out, "categories", "")
		return nil
	}

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ID\tNAME")

	for _, c := range cats {
		_, _ = fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
	}

	return w.Flush()
}

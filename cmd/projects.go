package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/inovacc/bidmatch/internal/model"
	"github.com/inovacc/bidmatch/internal/richtext"
	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:     "projects",
	Aliases: []string{"project", "p"},
	Short:   "Manage your projects",
	Long: `Commands for managing the projects you posted.

Available Commands:
  list      List projects
  show      Show one project
  create    Post a new project
  edit      Edit a project
  delete    Delete a project`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var projectsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Long: `List your projects one page at a time.

Examples:
  bidmatch projects list
  bidmatch projects list --page 2
  bidmatch projects list --json`,
	Args: cobra.NoArgs,
	RunE: runProjectsList,
}

var projectsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsShow,
}

var projectsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	Long: `Delete a project after confirmation.

Examples:
  bidmatch projects delete 12
  bidmatch projects delete 12 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectsDelete,
}

var (
	projectsPage int
	projectsJSON bool
	projectsYes  bool
)

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd, projectsShowCmd, projectsDeleteCmd)

	projectsListCmd.Flags().IntVar(&projectsPage, "page", 1, "Page number")
	projectsListCmd.Flags().BoolVar(&projectsJSON, "json", false, "Output as JSON")
	projectsShowCmd.Flags().BoolVar(&projectsJSON, "json", false, "Output as JSON")
	projectsDeleteCmd.Flags().BoolVarP(&projectsYes, "yes", "y", false, "Skip confirmation prompt")
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}

	return id, nil
}

func runProjectsList(cmd *cobra.Command, _ []string) error {
	if projectsPage < 1 {
		return errors.New("--page must be 1 or greater")
	}

	page, err := rt.client.ListProjects(cmd.Context(), projectsPage)
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if projectsJSON {
		return printJSON(out, page.Items)
	}

	if len(page.Items) == 0 {
		printEmptyResult(out, "projects", "Post one with: bidmatch projects create")
		return nil
	}

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ID\tLOCATION\tCATEGORY\tSTATUS\tSTART\tEND\tFILES")

	for _, p := range page.Items {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%d\n",
			p.ID, truncateString(p.Location(), 32), p.CategoryName(), p.Status, p.StartDate, p.EndDate, len(p.Attachments))
	}

	_ = w.Flush()

	_, _ = fmt.Fprintf(out, "\nPage %d of %d (%d total)\n", page.CurrentPage, page.LastPage, page.Total)

	return nil
}

func runProjectsShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	p, err := rt.client.GetProject(cmd.Context(), id)
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if projectsJSON {
		return printJSON(out, p)
	}

	printProject(cmd, p)

	return nil
}

func printProject(cmd *cobra.Command, p *model.Project) {
	out := cmd.OutOrStdout()

	printInfoBox(out, fmt.Sprintf("Project #%d", p.ID), map[string]string{
		"Location":      p.Location(),
		"Category":      p.CategoryName(),
		"Status":        string(p.Status),
		"Estimates due": p.EstimateDueDate.String(),
		"Start":         p.StartDate.String(),
		"End":           p.EndDate.String(),
		"Attachments":   strconv.Itoa(len(p.Attachments)),
	}, []string{"Location", "Category", "Status", "Estimates due", "Start", "End", "Attachments"})

	desc, err := richtext.ToMarkdown(p.Description)
	if err != nil {
		desc = richtext.PlainText(p.Description)
	}

	if desc != "" {
		_, _ = fmt.Fprintf(out, "\n%s\n", desc)
	}

	for _, a := range p.Attachments {
		_, _ = fmt.Fprintf(out, "  [%d] %s %s\n", a.ID, a.File, a.Description)
	}
}

func runProjectsDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !projectsYes && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete project #%d? [y/N]: ", id)) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
		return nil
	}

	if err := rt.client.DeleteProject(cmd.Context(), id); err != nil {
		return commandError(err)
	}

	rt.notifier.Success(fmt.Sprintf("Project #%d deleted", id))

	return nil
}

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inovacc/bidmatch/internal/staging"
	"github.com/spf13/cobra"
)

var contractorsCmd = &cobra.Command{
	Use:     "contractors",
	Aliases: []string{"c"},
	Short:   "Find contractors and their reviews",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var contractorsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search contractors by name, company or trade",
	Long: `Search contractors by name, company or trade.

Examples:
  bidmatch contractors search roofing
  bidmatch contractors search "acme builders" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runContractorsSearch,
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings <contractor-id>",
	Short: "List the reviews left on a contractor",
	Args:  cobra.ExactArgs(1),
	RunE:  runRatingsList,
}

var rateCmd = &cobra.Command{
	Use:   "rate <contractor-id>",
	Short: "Leave a review on a contractor",
	Long: `Leave a review on a contractor. The score is a whole number from 1 to 5.

Examples:
  bidmatch contractors rate 7 --score 5 --comment "On time and tidy"`,
	Args: cobra.ExactArgs(1),
	RunE: runRate,
}

var (
	contractorsJSON bool
	rateScore       int
	rateComment     string
)

func init() {
	rootCmd.AddCommand(contractorsCmd)
	contractorsCmd.AddCommand(contractorsSearchCmd, ratingsCmd, rateCmd)

	contractorsSearchCmd.Flags().BoolVar(&contractorsJSON, "json", false, "Output as JSON")
	ratingsCmd.Flags().BoolVar(&contractorsJSON, "json", false, "Output as JSON")
	rateCmd.Flags().IntVarP(&rateScore, "score", "s", 0, "Score from 1 to 5")
	rateCmd.Flags().StringVarP(&rateComment, "comment", "m", "", "Comment")
}

func stars(score float64) string {
	n := int(score + 0.5)
	if n < 0 {
		n = 0
	}

	if n > 5 {
		n = 5
	}

	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

func runContractorsSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	hits, err := rt.client.SearchContractors(cmd.Context(), query)
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if contractorsJSON {
		return printJSON(out, hits)
	}

	if len(hits) == 0 {
		printEmptyResult(out, "contractors", fmt.Sprintf("Nothing matched %q.", query))
		return nil
	}

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tLOCATION\tRATING")

	for _, c := range hits {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s, %s\t%s (%d)\n", c.ID, c.Name, c.Company, c.City, c.State, stars(c.Rating), c.Reviews)
	}

	return w.Flush()
}

func runRatingsList(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	ratings, err := rt.client.ListRatings(cmd.Context(), id)
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if contractorsJSON {
		return printJSON(out, ratings)
	}

	if len(ratings) == 0 {
		printEmptyResult(out, "reviews", fmt.Sprintf("Be the first: bidmatch contractors rate %d --score 5", id))
		return nil
	}

	for _, r := range ratings {
		author := r.Author
		if author == "" {
			author = "anonymous"
		}

		_, _ = fmt.Fprintf(out, "%s  %s  %s\n", stars(float64(r.Score)), r.CreatedAt.Format("2006-01-02"), author)

		if r.Comment != "" {
			_, _ = fmt.Fprintf(out, "  %s\n", r.Comment)
		}
	}

	return nil
}

func runRate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	form := map[string]string{staging.FieldComment: rateComment}
	if cmd.Flags().Changed("score") {
		form[staging.FieldScore] = strconv.Itoa(rateScore)
	}

	in, err := staging.RatingInput(id, form)
	if err != nil {
		return commandError(err)
	}

	if _, err := rt.client.CreateRating(cmd.Context(), in); err != nil {
		return commandError(err)
	}

	rt.notifier.Success(fmt.Sprintf("Review saved for contractor #%d", id))

	return nil
}

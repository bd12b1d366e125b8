package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var subscriptionsCmd = &cobra.Command{
	Use:     "subscriptions",
	Aliases: []string{"subs"},
	Short:   "Manage subscriptions",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var subscriptionsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your subscriptions",
	Args:    cobra.NoArgs,
	RunE:    runSubscriptionsList,
}

var subscriptionsPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List available plans",
	Args:  cobra.NoArgs,
	RunE:  runSubscriptionsPlans,
}

var subscriptionsCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a subscription",
	Long: `Cancel an active subscription after confirmation.

Examples:
  bidmatch subscriptions cancel 42
  bidmatch subscriptions cancel 42 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: runSubscriptionsCancel,
}

var (
	subscriptionsJSON bool
	subscriptionsYes  bool
)

func init() {
	rootCmd.AddCommand(subscriptionsCmd)
	subscriptionsCmd.AddCommand(subscriptionsListCmd, subscriptionsPlansCmd, subscriptionsCancelCmd)

	subscriptionsListCmd.Flags().BoolVar(&subscriptionsJSON, "json", false, "Output as JSON")
	subscriptionsPlansCmd.Flags().BoolVar(&subscriptionsJSON, "json", false, "Output as JSON")
	subscriptionsCancelCmd.Flags().BoolVarP(&subscriptionsYes, "yes", "y", false, "Skip confirmation prompt")
}

func formatDay(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}

	return t.Format("2006-01-02")
}

func runSubscriptionsList(cmd *cobra.Command, _ []string) error {
	subs, err := rt.client.ListSubscriptions(cmd.Context())
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if subscriptionsJSON {
		return printJSON(out, subs)
	}

	if len(subs) == 0 {
		printEmptyResult(out, "subscriptions", "See what is available with: bidmatch subscriptions plans")
		return nil
	}

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ID\tPLAN\tSTATUS\tSTARTS\tENDS")

	for _, s := range subs {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.PlanName(), s.Status, formatDay(s.StartsAt), formatDay(s.EndsAt))
	}

	return w.Flush()
}

func runSubscriptionsPlans(cmd *cobra.Command, _ []string) error {
	plans, err := rt.client.ListPlans(cmd.Context())
	if err != nil {
		return commandError(err)
	}

	out := cmd.OutOrStdout()

	if subscriptionsJSON {
		return printJSON(out, plans)
	}

	if len(plans) == 0 {
		printEmptyResult(out, "plans", "")
		return nil
	}

	w := newTabWriter(out)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tPRICE\tINTERVAL\tFEATURES")

	for _, p := range plans {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n", p.ID, p.Name, p.Price, p.Interval, truncateString(strings.Join(p.Features, ", "), 48))
	}

	return w.Flush()
}

func runSubscriptionsCancel(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if !subscriptionsYes && !promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Cancel subscription #%d? [y/N]: ", id)) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	if err := rt.client.CancelSubscription(cmd.Context(), id); err != nil {
		return commandError(err)
	}

	rt.notifier.Success(fmt.Sprintf("Subscription #%d cancelled", id))

	return nil
}

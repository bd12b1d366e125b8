package cmd

import (
	"log/slog"

	"github.com/inovacc/bidmatch/internal/cli"
	"github.com/inovacc/bidmatch/internal/preview"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"ui"},
	Short:   "Open the interactive dashboard",
	Long: `Open the interactive dashboard. This is also what running bidmatch
without a command does.

Keys:
  enter     open / confirm
  esc       back
  ctrl+x    dismiss notifications
  ctrl+c    quit`,
	Args: cobra.NoArgs,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	previews, err := preview.NewRegistry("", rt.logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := previews.Close(); err != nil {
			rt.logger.Warn("failed to remove previews", slog.Any("error", err))
		}
	}()

	return cli.Run(cmd.Context(), cli.Deps{
		Client:        rt.client,
		Session:       rt.session,
		Previews:      previews,
		Logger:        rt.logger,
		DebounceDelay: rt.cfg.UI.DebounceDelay,
		ToastTTL:      rt.cfg.UI.ToastTTL,
		ToastCap:      rt.cfg.UI.ToastCap,
	})
}

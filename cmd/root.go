package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/inovacc/bidmatch/internal/application"
	"github.com/spf13/cobra"
)

var (
	flagAPIURL    string
	flagToken     string
	flagConfig    string
	flagEnvFile   string
	flagDebug     bool
	flagLogStderr bool
)

// rt is built by PersistentPreRunE for every command that needs it.
var rt *runtime

var rootCmd = &cobra.Command{
	Use:   application.AppName,
	Short: "Construction project matchmaking from the terminal",
	Long: `bidmatch connects general contractors with subcontractors.

Post projects with attachments, manage subscriptions, review payment
history and search for contractors, either with one-shot commands or in
the interactive dashboard (run without arguments).`,
	SilenceUsage:      true,
	PersistentPreRunE: setupRuntime,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if rt != nil {
			rt.Close()
			rt = nil
		}
	},
	RunE: runDashboard,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)

	if rt != nil {
		rt.Close()
	}

	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command for introspection purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagAPIURL, "api-url", "", "API base URL (overrides config)")
	pf.StringVar(&flagToken, "token", "", "Bearer token for this invocation")
	pf.StringVar(&flagConfig, "config", "", "Path to config.ini")
	pf.StringVar(&flagEnvFile, "env-file", "", "Path to a .env file (default .env)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.BoolVar(&flagLogStderr, "log-stderr", false, "Log to stderr instead of a log file")
}

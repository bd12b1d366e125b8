package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/inovacc/bidmatch/internal/application"
	"github.com/inovacc/bidmatch/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var configShowCmd = &cobra.Command{
	Use:         "show",
	Short:       "Show the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{setupAnnotation: setupConfig},
	RunE:        runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the default configuration file path",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{setupAnnotation: setupNone},
	RunE:        runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default settings",
	Long: `Write a configuration file with the default settings.

Examples:
  bidmatch config init
  bidmatch config init --api-url https://api.example.com/api --force`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{setupAnnotation: setupNone},
	RunE:        runConfigInit,
}

var configForce bool

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	c := rt.cfg

	source := c.Path
	if source == "" {
		source = "(defaults)"
	}

	printInfoBox(cmd.OutOrStdout(), "bidmatch config", map[string]string{
		"File":           source,
		"API":            c.API.BaseURL,
		"Timeout":        c.API.Timeout.String(),
		"Search rate":    fmt.Sprintf("%g/s burst %d", c.API.SearchRate, c.API.SearchBurst),
		"Debounce":       c.UI.DebounceDelay.String(),
		"Toasts":         fmt.Sprintf("%d for %s", c.UI.ToastCap, c.UI.ToastTTL),
		"System keyring": strconv.FormatBool(c.Auth.UseKeyring),
		"Log":            fmt.Sprintf("%s (%s, keep %d)", c.Log.Level, c.Log.Format, c.Log.MaxFiles),
	}, []string{"File", "API", "Timeout", "Search rate", "Debounce", "Toasts", "System keyring", "Log"})

	return nil
}

func defaultConfigPath() (string, error) {
	if flagConfig != "" {
		return expandPath(flagConfig)
	}

	return application.Path(config.FileName)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	path, err := defaultConfigPath()
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)

	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := defaultConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil && !configForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()

	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL

		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	if err := cfg.Write(path); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)

	return nil
}

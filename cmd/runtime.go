package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/inovacc/bidmatch/internal/api"
	"github.com/inovacc/bidmatch/internal/application"
	"github.com/inovacc/bidmatch/internal/config"
	"github.com/inovacc/bidmatch/internal/database"
	"github.com/inovacc/bidmatch/internal/logging"
	"github.com/inovacc/bidmatch/internal/notify"
	"github.com/inovacc/bidmatch/internal/session"
	"github.com/spf13/cobra"
)

const (
	// setupAnnotation selects how much of the runtime a command needs.
	setupAnnotation = "setup"
	setupNone       = "none"
	setupConfig     = "config"

	dbFileName = "bidmatch.db"
)

// runtime holds what commands share: configuration, logger, the local
// database, the session context and the API client.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *database.Bolt
	session  *session.Context
	client   *api.Client
	notifier *notify.Dispatcher
	closers  []io.Closer
}

func setupRuntime(cmd *cobra.Command, _ []string) error {
	level := cmd.Annotations[setupAnnotation]
	if level == setupNone {
		return nil
	}

	cfg, err := config.Load(config.LoadOptions{Path: flagConfig, EnvFile: flagEnvFile})
	if err != nil {
		return err
	}

	if flagAPIURL != "" {
		cfg.API.BaseURL = flagAPIURL

		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if flagDebug {
		cfg.Log.Level = "debug"
	}

	r := &runtime{cfg: cfg}
	rt = r

	logDir, err := application.Path("logs")
	if err != nil {
		return err
	}

	logger, closer, err := logging.Setup(logging.Options{
		Dir:      logDir,
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		MaxFiles: cfg.Log.MaxFiles,
		Stderr:   flagLogStderr,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	r.logger = logger
	r.closers = append(r.closers, closer)
	slog.SetDefault(logger)

	logger.Debug("starting",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", application.Version),
		slog.String("api", cfg.API.BaseURL),
	)

	r.notifier = notify.NewDispatcher(logger, notify.WriterSender{W: os.Stderr})

	if level == setupConfig {
		return nil
	}

	dbPath, err := application.Path(dbFileName)
	if err != nil {
		return err
	}

	store, err := database.NewBolt(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}

	r.store = store
	r.closers = append(r.closers, store)

	var vault session.Vault
	if cfg.Auth.UseKeyring && session.KeyringAvailable() {
		vault = session.KeyringVault{}
	} else {
		logger.Debug("system keyring disabled or unavailable, tokens are kept in the local database")
	}

	sess, err := session.New(session.Options{
		Store:     store,
		Vault:     vault,
		Host:      cfg.Host(),
		FlagToken: flagToken,
		EnvVar:    application.EnvPrefix + "TOKEN",
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	r.session = sess

	client, err := api.NewClient(cfg.API.BaseURL, sess, api.ClientOptions{
		Logger:      logger,
		Timeout:     cfg.API.Timeout,
		SearchRate:  cfg.API.SearchRate,
		SearchBurst: cfg.API.SearchBurst,
	})
	if err != nil {
		return err
	}

	r.client = client

	return nil
}

// Close releases everything in reverse order of creation.
func (r *runtime) Close() {
	var errs []error

	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i].Close())
	}

	r.closers = nil

	if err := errors.Join(errs...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "warning: cleanup failed: %v\n", err)
	}
}

// authError rewrites credential failures into a hint to sign in.
func authError(err error) error {
	if err == nil {
		return nil
	}

	if api.IsAuth(err) {
		return fmt.Errorf("%s\nRun '%s login' to sign in", api.UserMessage(err), application.AppName)
	}

	return err
}

// commandError renders an API failure for the terminal. Field errors are
// listed one per line.
func commandError(err error) error {
	if err == nil {
		return nil
	}

	if api.IsAuth(err) {
		return authError(err)
	}

	if fields := api.FieldErrors(err); len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		var sb strings.Builder

		sb.WriteString(api.UserMessage(err))

		for _, k := range keys {
			sb.WriteString(fmt.Sprintf("\n  %s: %s", k, fields[k]))
		}

		return errors.New(sb.String())
	}

	return errors.New(api.UserMessage(err))
}

package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"associate-os/internal/format"
	"associate-os/internal/logging"
	"associate-os/internal/store"
	"associate-os/internal/tracker"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ConfigPath string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg store.Config
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:          "associate",
		Short:        "Associate task tracker (local, single-user) CLI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Add a task and a nested checklist
  associate tasks add "Draft brief" --due 2024-05-01 --matter M-100
  associate subtasks add <task-id> "Send draft"
  associate subtasks add <task-id> "Proofread" --parent <subtask-id>

  # Take a snapshot before cleaning up, restore it by name
  associate snapshots create before-cleanup
  associate snapshots restore before-cleanup

  # Direct task lookup (shortcut for: associate tasks show <task-id>)
  associate 0b8f1f8e-6a53-4d5e-9a53-2f1c3c1d9e11
`),
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.resolve()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("ASSOCIATE_DIR", ""), "Data directory holding the SQLite store (default: data_dir from config, else ~/.associate-os/data)")
	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("ASSOCIATE_CONFIG", ""), "Path to config.toml (default: ~/.associate-os/config.toml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("ASSOCIATE_FORMAT", ""), "Output format (json|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", envOr("ASSOCIATE_LOG_LEVEL", ""), "Log level for stderr diagnostics (debug|info|warn|error)")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newSubtasksCmd(app))
	cmd.AddCommand(newSettingsCmd(app))
	cmd.AddCommand(newTeamCmd(app))
	cmd.AddCommand(newResourcesCmd(app))
	cmd.AddCommand(newSnapshotsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// resolve fills unset flags from the config file. Precedence: flag > env > config > default.
func (app *App) resolve() error {
	cfg, err := store.LoadConfig(app.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app.cfg = cfg
	if app.Format == "" {
		app.Format = cfg.Format
	}
	if app.LogLevel == "" {
		app.LogLevel = cfg.LogLevel
	}
	if app.Dir == "" {
		app.Dir = cfg.DataDir
	}
	if app.Dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return err
		}
		app.Dir = d
	}
	return nil
}

func openTracker(cmd *cobra.Command, app *App) (*tracker.Tracker, error) {
	logger, err := logging.New(cmd.ErrOrStderr(), app.LogLevel)
	if err != nil {
		return nil, err
	}
	docs, err := store.Open(cmd.Context(), store.Store{Dir: app.Dir},
		store.WithNamespace(app.cfg.Namespace),
		store.WithSnapshotNamespace(app.cfg.SnapshotNamespace),
		store.WithLogger(logger),
		store.WithSettingsHook(format.ApplyTheme),
	)
	if err != nil {
		return nil, err
	}
	return tracker.New(docs, tracker.WithClock(app.now)), nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

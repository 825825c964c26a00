package cli

import (
	"errors"
	"fmt"
	"os"

	"associate-os/internal/store"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize config.toml",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigInitCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dataDir":           app.Dir,
					"namespace":         app.cfg.Namespace,
					"snapshotNamespace": app.cfg.SnapshotNamespace,
					"product":           app.cfg.Product,
					"logLevel":          app.LogLevel,
					"format":            app.Format,
				},
				"meta": map[string]any{"configPath": path},
			})
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config.toml with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, fmt.Errorf("config already exists: %s (use --force to overwrite)", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return writeErr(cmd, err)
			}
			if err := store.SaveConfig(path, store.DefaultConfig()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func configPath(app *App) (string, error) {
	if app.ConfigPath != "" {
		return app.ConfigPath, nil
	}
	return store.ConfigPath()
}

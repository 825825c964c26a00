package cli

import (
	"strings"

	"associate-os/internal/store"

	"github.com/spf13/cobra"
)

func newSnapshotsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Named point-in-time copies of the whole document",
	}
	cmd.AddCommand(newSnapshotsCreateCmd(app))
	cmd.AddCommand(newSnapshotsListCmd(app))
	cmd.AddCommand(newSnapshotsRestoreCmd(app))
	return cmd
}

func newSnapshotsCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Snapshot the stored document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			key, err := tr.Documents().Snapshot(cmd.Context(), name)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"key": key, "name": strings.TrimSpace(name)},
				"_hints": []string{"associate snapshots restore " + shellQuote(key)},
			})
		},
	}
}

func newSnapshotsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots (most recent first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			infos, err := tr.Documents().ListSnapshots(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if infos == nil {
				infos = []store.SnapshotInfo{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": infos,
				"meta": map[string]any{"count": len(infos)},
			})
		},
	}
}

func newSnapshotsRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <key-or-name>",
		Short: "Replace the live document with a snapshot (by key, or the latest with that name)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.Documents().Restore(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			doc := tr.Current()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"restored": args[0]},
				"meta": map[string]any{"tasks": len(doc.Tasks), "resources": len(doc.Resources)},
			})
		},
	}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"associate-os/internal/store"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the stored document as JSON (stdout, a file, or a directory)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, err := tr.Documents().Export(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			to = strings.TrimSpace(to)
			if to == "" || to == "-" {
				_, err := cmd.OutOrStdout().Write(b)
				return err
			}

			path := to
			if st, err := os.Stat(to); err == nil && st.IsDir() {
				path = filepath.Join(to, store.ExportFilename(app.cfg.Product, app.now()))
			}
			if err := store.WriteFileAtomic(path, b); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": path, "bytes": len(b)},
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Destination file, or a directory to write <product>_backup_<date>.json into (default: stdout)")
	return cmd
}

func newImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Replace the whole document with an exported JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}

			var b []byte
			if args[0] == "-" {
				b, err = io.ReadAll(cmd.InOrStdin())
			} else {
				b, err = os.ReadFile(args[0])
			}
			if err != nil {
				return writeErr(cmd, fmt.Errorf("read import: %w", err))
			}

			if err := tr.Documents().Import(cmd.Context(), b); err != nil {
				return writeErr(cmd, err)
			}
			doc := tr.Current()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"tasks":     len(doc.Tasks),
					"resources": len(doc.Resources),
					"team":      len(doc.Settings.Team),
				},
				"_hints": []string{"associate snapshots create before-import"},
			})
		},
	}
	return cmd
}

package cli

import (
	"errors"
	"strings"

	"associate-os/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var includeDone bool
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Write derived Markdown reports (not canonical; import ignores them)",
	}

	taskCmd := &cobra.Command{
		Use:   "task <task-id>",
		Short: "Publish a single task as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireTask(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			res, err := publish.WriteTask(tr.Current(), args[0], toDir, publish.WriteOptions{
				IncludeDone: includeDone,
				Overwrite:   overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	matterCmd := &cobra.Command{
		Use:   "matter <matter-ref>",
		Short: "Publish a matter index + task pages as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			toDir = strings.TrimSpace(toDir)
			if toDir == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			res, err := publish.WriteMatter(tr.Current(), args[0], toDir, publish.WriteOptions{
				IncludeDone: includeDone,
				Overwrite:   overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	for _, c := range []*cobra.Command{taskCmd, matterCmd} {
		c.Flags().StringVar(&toDir, "to", "", "Output directory")
		c.Flags().BoolVar(&includeDone, "include-done", false, "Include DONE tasks")
		c.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files")
		cmd.AddCommand(c)
	}
	return cmd
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"associate-os/internal/format"
	"associate-os/internal/model"
	"associate-os/internal/mutate"
	"associate-os/internal/tracker"
	"associate-os/internal/tree"

	"github.com/spf13/cobra"
)

func newSubtasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subtasks",
		Aliases: []string{"sub"},
		Short:   "Subtask forest and workflow edge commands",
	}
	cmd.AddCommand(newSubtasksAddCmd(app))
	cmd.AddCommand(newSubtasksToggleCmd(app))
	cmd.AddCommand(newSubtasksTitleCmd(app))
	cmd.AddCommand(newSubtasksTypeCmd(app))
	cmd.AddCommand(newSubtasksPayloadCmd(app))
	cmd.AddCommand(newSubtasksPositionCmd(app))
	cmd.AddCommand(newSubtasksDeleteCmd(app))
	cmd.AddCommand(newSubtasksConnectCmd(app))
	cmd.AddCommand(newSubtasksDisconnectCmd(app))
	cmd.AddCommand(newSubtasksEdgesCmd(app))
	cmd.AddCommand(newSubtasksTreeCmd(app))
	return cmd
}

func newSubtasksAddCmd(app *App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "add <task-id> <title>",
		Short: "Add a subtask at the top level, or under --parent at any depth",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			taskID := args[0]
			if _, err := requireTask(tr.Current(), taskID); err != nil {
				return writeErr(cmd, err)
			}

			var id string
			if strings.TrimSpace(parent) == "" {
				id, err = tr.AddSubtask(cmd.Context(), taskID, args[1])
			} else {
				if _, _, err := requireSubtask(tr.Current(), taskID, parent); err != nil {
					return writeErr(cmd, err)
				}
				id, err = tr.AddSubSubtask(cmd.Context(), taskID, parent, args[1])
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if id == "" {
				return writeErr(cmd, fmt.Errorf("subtask not inserted"))
			}
			_, n, err := requireSubtask(tr.Current(), taskID, id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": n,
				"meta": map[string]any{"taskId": taskID},
			})
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent subtask id (nests the new subtask under it)")
	return cmd
}

// subtaskMutationCmd checks that the task and subtask exist, applies one
// change and prints the updated subtask.
func subtaskMutationCmd(app *App, use, short string, nargs int, apply func(ctx context.Context, tr *tracker.Tracker, taskID, subtaskID string, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			taskID, subtaskID := args[0], args[1]
			if _, _, err := requireSubtask(tr.Current(), taskID, subtaskID); err != nil {
				return writeErr(cmd, err)
			}
			if err := apply(cmd.Context(), tr, taskID, subtaskID, args[2:]); err != nil {
				return writeErr(cmd, err)
			}
			_, n, err := requireSubtask(tr.Current(), taskID, subtaskID)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": n})
		},
	}
}

func newSubtasksToggleCmd(app *App) *cobra.Command {
	return subtaskMutationCmd(app, "toggle <task-id> <subtask-id>", "Flip a subtask's done state", 2, func(ctx context.Context, tr *tracker.Tracker, taskID, subtaskID string, args []string) error {
		return tr.ToggleSubtask(ctx, taskID, subtaskID)
	})
}

func newSubtasksTitleCmd(app *App) *cobra.Command {
	return subtaskMutationCmd(app, "title <task-id> <subtask-id> <title>", "Rename a subtask", 3, func(ctx context.Context, tr *tracker.Tracker, taskID, subtaskID string, args []string) error {
		return tr.UpdateSubtaskTitle(ctx, taskID, subtaskID, args[0])
	})
}

func newSubtasksTypeCmd(app *App) *cobra.Command {
	return subtaskMutationCmd(app, "type <task-id> <subtask-id> <type>", "Set type GENERIC|DOCUMENT|RESEARCH|EMAIL", 3, func(ctx context.Context, tr *tracker.Tracker, taskID, subtaskID string, args []string) error {
		return tr.SetSubtaskType(ctx, taskID, subtaskID, model.SubtaskType(strings.ToUpper(args[0])))
	})
}

func newSubtasksPayloadCmd(app *App) *cobra.Command {
	var clear bool
	cmd := subtaskMutationCmd(app, "payload <task-id> <subtask-id> [payload]", "Set or clear the type-specific payload", 2, func(ctx context.Context, tr *tracker.Tracker, taskID, subtaskID string, args []string) error {
		payload := ""
		if !clear {
			if len(args) == 0 {
				return fmt.Errorf("payload required (or use --clear)")
			}
			payload = args[0]
		}
		return tr.SetSubtaskPayload(ctx, taskID, subtaskID, payload)
	})
	cmd.Args = cobra.RangeArgs(2, 3)
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the payload")
	return cmd
}

func newSubtasksPositionCmd(app *App) *cobra.Command {
	var x, y float64
	cmd := subtaskMutationCmd(app, "position <task-id> <subtask-id>", "Set the canvas position", 2, func(ctx context.Context, tr *tracker.Tracker, taskID, subtaskID string, args []string) error {
		return tr.MoveSubtask(ctx, taskID, subtaskID, x, y)
	})
	cmd.Flags().Float64Var(&x, "x", 0, "Canvas x coordinate")
	cmd.Flags().Float64Var(&y, "y", 0, "Canvas y coordinate")
	return cmd
}

func newSubtasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id> <subtask-id>",
		Short: "Delete a subtask and everything nested under it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			taskID, subtaskID := args[0], args[1]
			_, n, err := requireSubtask(tr.Current(), taskID, subtaskID)
			if err != nil {
				return writeErr(cmd, err)
			}
			removed := []string{}
			tree.Walk([]*model.Subtask{n}, func(s *model.Subtask, _ int) bool {
				removed = append(removed, s.ID)
				return true
			})
			if err := tr.DeleteSubtask(cmd.Context(), taskID, subtaskID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"deleted": removed},
				"meta": map[string]any{"taskId": taskID, "count": len(removed)},
			})
		},
	}
	return cmd
}

func edgeCmd(app *App, use, short string, apply func(ctx context.Context, tr *tracker.Tracker, taskID, from, to string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			taskID, from, to := args[0], args[1], args[2]
			if _, _, err := requireSubtask(tr.Current(), taskID, from); err != nil {
				return writeErr(cmd, err)
			}
			if err := apply(cmd.Context(), tr, taskID, from, to); err != nil {
				return writeErr(cmd, err)
			}
			t, _ := tr.Current().FindTask(taskID)
			return writeOut(cmd, app, map[string]any{
				"data": mutate.Edges(t),
				"meta": map[string]any{"taskId": taskID},
			})
		},
	}
}

func newSubtasksConnectCmd(app *App) *cobra.Command {
	return edgeCmd(app, "connect <task-id> <from-subtask-id> <to-subtask-id>", "Add a workflow edge between two subtasks of a task", func(ctx context.Context, tr *tracker.Tracker, taskID, from, to string) error {
		if _, _, err := requireSubtask(tr.Current(), taskID, to); err != nil {
			return err
		}
		return tr.Connect(ctx, taskID, from, to)
	})
}

func newSubtasksDisconnectCmd(app *App) *cobra.Command {
	return edgeCmd(app, "disconnect <task-id> <from-subtask-id> <to-subtask-id>", "Remove a workflow edge", func(ctx context.Context, tr *tracker.Tracker, taskID, from, to string) error {
		return tr.Disconnect(ctx, taskID, from, to)
	})
}

func newSubtasksEdgesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edges <task-id>",
		Short: "List a task's workflow edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(tr.Current(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			edges := mutate.Edges(t)
			return writeOut(cmd, app, map[string]any{
				"data": edges,
				"meta": map[string]any{"count": len(edges)},
			})
		},
	}
	return cmd
}

func newSubtasksTreeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <task-id>",
		Short: "Print a task's subtask forest as a tree (text)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := requireTask(tr.Current(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), format.RenderTaskTree(t))
			return err
		},
	}
	return cmd
}

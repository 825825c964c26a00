package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"associate-os/internal/model"
	"associate-os/internal/mutate"
	"associate-os/internal/statusutil"
	"associate-os/internal/tracker"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksTitleCmd(app))
	cmd.AddCommand(newTasksDateCmd(app))
	cmd.AddCommand(newTasksMoveCmd(app))
	cmd.AddCommand(newTasksPriorityCmd(app))
	cmd.AddCommand(newTasksFlagCmd(app))
	cmd.AddCommand(newTasksMatterCmd(app))
	cmd.AddCommand(newTasksTimeCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksDependCmd(app))
	cmd.AddCommand(newTasksUndependCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var status string
	var matter string
	var flagged bool
	var open bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (newest first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var want model.Status
			if status != "" {
				st, err := statusutil.NormalizeStatus(status)
				if err != nil {
					return writeErr(cmd, fmt.Errorf("%w: %q", mutate.ErrInvalidStatus, status))
				}
				want = st
			}

			out := make([]*model.Task, 0)
			for _, t := range tr.Current().Tasks {
				if want != "" && t.Status != want {
					continue
				}
				if matter != "" && t.MatterRef != matter {
					continue
				}
				if flagged && t.FlaggedDate == nil {
					continue
				}
				if open && statusutil.IsEndState(t.Status) {
					continue
				}
				out = append(out, t)
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out)},
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only tasks with this status (TODO|WAITING|REVIEW|DONE)")
	cmd.Flags().StringVar(&matter, "matter", "", "Only tasks filed under this matter")
	cmd.Flags().BoolVar(&flagged, "flagged", false, "Only tasks with a follow-up date")
	cmd.Flags().BoolVar(&open, "open", false, "Hide DONE tasks")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show a task with its subtask forest and workflow edges",
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
			return writeOut(cmd, app, map[string]any{
				"data": t,
				"meta": map[string]any{"edges": mutate.Edges(t)},
			})
		},
	}
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var due string
	var matter string
	var priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task (placed at the top of the list)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			date, err := parseDate(due, app.now())
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := tr.AddTask(cmd.Context(), args[0], matter, date, model.Priority(strings.ToUpper(priority)))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().StringVar(&due, "due", "today", "Due date (YYYY-MM-DD, today, tomorrow, +Nd)")
	cmd.Flags().StringVar(&matter, "matter", "", "Matter reference (default: General)")
	cmd.Flags().StringVar(&priority, "priority", "", "Priority (LOW|MEDIUM|HIGH, default MEDIUM)")
	return cmd
}

// taskMutationCmd builds the common shape: check the task exists, apply one
// change, print the updated task.
func taskMutationCmd(app *App, use, short string, nargs int, apply func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			taskID := args[0]
			if _, err := requireTask(tr.Current(), taskID); err != nil {
				return writeErr(cmd, err)
			}
			if err := apply(cmd.Context(), tr, taskID, args[1:]); err != nil {
				return writeErr(cmd, err)
			}
			t, _ := tr.Current().FindTask(taskID)
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
}

func newTasksTitleCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "title <task-id> <title>", "Rename a task", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		return tr.UpdateTitle(ctx, taskID, args[0])
	})
}

func newTasksDateCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "date <task-id> <date>", "Set the due date", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		date, err := parseDate(args[0], app.now())
		if err != nil {
			return err
		}
		return tr.UpdateDate(ctx, taskID, date)
	})
}

func newTasksMoveCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "move <task-id> <status>", "Move a task to TODO|WAITING|REVIEW|DONE (any case, \"in review\" accepted)", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		st, err := statusutil.NormalizeStatus(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q", mutate.ErrInvalidStatus, args[0])
		}
		return tr.MoveTask(ctx, taskID, st)
	})
}

func newTasksPriorityCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "priority <task-id> <priority>", "Set priority LOW|MEDIUM|HIGH", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		return tr.SetPriority(ctx, taskID, model.Priority(strings.ToUpper(args[0])))
	})
}

func newTasksFlagCmd(app *App) *cobra.Command {
	var clear bool
	cmd := taskMutationCmd(app, "flag <task-id> [date]", "Set (default today) or clear the follow-up date", 1, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		if clear {
			return tr.FlagTask(ctx, taskID, nil)
		}
		in := "today"
		if len(args) > 0 {
			in = args[0]
		}
		date, err := parseDate(in, app.now())
		if err != nil {
			return err
		}
		return tr.FlagTask(ctx, taskID, &date)
	})
	cmd.Args = cobra.RangeArgs(1, 2)
	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the follow-up date")
	return cmd
}

func newTasksMatterCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "matter <task-id> <matter-ref>", "File a task under a matter", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		return tr.SetMatter(ctx, taskID, args[0])
	})
}

func newTasksTimeCmd(app *App) *cobra.Command {
	var add time.Duration
	cmd := taskMutationCmd(app, "time <task-id>", "Add tracked time (e.g. --add 25m, --add=-5m)", 1, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		return tr.TrackTime(ctx, taskID, add.Seconds())
	})
	cmd.Flags().DurationVar(&add, "add", 0, "Duration to add; negative values subtract (total never drops below zero)")
	return cmd
}

func newTasksDependCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "depend <task-id> <depends-on-task-id>", "Record that a task depends on another", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		if _, err := requireTask(tr.Current(), args[0]); err != nil {
			return err
		}
		return tr.AddDependency(ctx, taskID, args[0])
	})
}

func newTasksUndependCmd(app *App) *cobra.Command {
	return taskMutationCmd(app, "undepend <task-id> <depends-on-task-id>", "Remove a task dependency", 2, func(ctx context.Context, tr *tracker.Tracker, taskID string, args []string) error {
		return tr.RemoveDependency(ctx, taskID, args[0])
	})
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (dependencies pointing at it are kept; see doctor --fix)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireTask(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.DeleteTask(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
	return cmd
}

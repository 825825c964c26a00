package cli

import (
	"associate-os/internal/store"

	"github.com/spf13/cobra"
)

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the stored document, references and snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}

			pruned := 0
			if fix {
				pruned, err = tr.PruneDanglingReferences(cmd.Context())
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			report, err := tr.Documents().Doctor(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			meta := map[string]any{
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
			}
			if fix {
				meta["pruned"] = pruned
			}
			hints := []string{
				"associate doctor --fix",
				"associate snapshots list",
			}

			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   meta,
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	cmd.Flags().BoolVar(&fix, "fix", false, "Drop dangling next edges and dependencies before reporting")
	return cmd
}

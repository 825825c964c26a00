package cli

import (
	"fmt"
	"strings"

	"associate-os/internal/model"
	"associate-os/internal/mutate"

	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and change user settings",
	}
	cmd.AddCommand(newSettingsShowCmd(app))
	cmd.AddCommand(newSettingsShortsignCmd(app))
	cmd.AddCommand(newSettingsDarkModeCmd(app))
	cmd.AddCommand(newSettingsAuthCmd(app))
	return cmd
}

func newSettingsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show settings (including the team)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tr.Current().Settings})
		},
	}
}

func newSettingsShortsignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shortsign <shortsign>",
		Short: "Set your own shortsign",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.SetShortsign(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tr.Current().Settings})
		},
	}
}

func newSettingsDarkModeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "dark-mode <on|off|toggle>",
		Short:     "Switch dark mode",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			switch strings.ToLower(args[0]) {
			case "toggle":
				err = tr.ToggleDarkMode(cmd.Context())
			default:
				var on bool
				on, err = parseOnOff(args[0])
				if err == nil {
					err = tr.SetDarkMode(cmd.Context(), on)
				}
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tr.Current().Settings})
		},
	}
}

func newSettingsAuthCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "auth <on|off>",
		Short: "Set the authenticated flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			on, err := parseOnOff(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.SetAuthenticated(cmd.Context(), on); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tr.Current().Settings})
		},
	}
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: expected on or off, got %q", mutate.ErrInvalidInput, s)
	}
}

func newTeamCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "team",
		Short: "Team member commands",
	}
	cmd.AddCommand(newTeamListCmd(app))
	cmd.AddCommand(newTeamAddCmd(app))
	cmd.AddCommand(newTeamUpdateCmd(app))
	cmd.AddCommand(newTeamRemoveCmd(app))
	cmd.AddCommand(newTeamLeaderCmd(app))
	return cmd
}

func newTeamListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List team members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			team := tr.Current().Settings.Team
			if team == nil {
				team = []model.TeamMember{}
			}
			meta := map[string]any{"count": len(team)}
			if l, ok := tr.Current().Settings.Leader(); ok {
				meta["leader"] = l.ID
			}
			return writeOut(cmd, app, map[string]any{"data": team, "meta": meta})
		},
	}
}

func newTeamAddCmd(app *App) *cobra.Command {
	var m model.TeamMember

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a team member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := tr.AddTeamMember(cmd.Context(), m)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := requireMember(tr.Current(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&m.Name, "name", "", "Full name")
	cmd.Flags().StringVar(&m.Shortsign, "shortsign", "", "Initials shown on tasks")
	cmd.Flags().StringVar(&m.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&m.Color, "color", "", "Display color classes")
	cmd.Flags().BoolVar(&m.IsLeader, "leader", false, "Make this member the team leader")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("shortsign")
	return cmd
}

func newTeamUpdateCmd(app *App) *cobra.Command {
	var name, shortsign, email, color string

	cmd := &cobra.Command{
		Use:   "update <member-id>",
		Short: "Update a team member (only the flags given are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireMember(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			var p mutate.MemberPatch
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("shortsign") {
				p.Shortsign = &shortsign
			}
			if cmd.Flags().Changed("email") {
				p.Email = &email
			}
			if cmd.Flags().Changed("color") {
				p.Color = &color
			}
			if err := tr.UpdateTeamMember(cmd.Context(), args[0], p); err != nil {
				return writeErr(cmd, err)
			}
			out, err := requireMember(tr.Current(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&shortsign, "shortsign", "", "Initials shown on tasks")
	cmd.Flags().StringVar(&email, "email", "", "Email address (empty clears)")
	cmd.Flags().StringVar(&color, "color", "", "Display color classes (empty resets)")
	return cmd
}

func newTeamRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <member-id>",
		Short: "Remove a team member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireMember(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.RemoveTeamMember(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"removed": args[0]}})
		},
	}
}

func newTeamLeaderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leader <member-id>",
		Short: "Make a member the single team leader",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireMember(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.SetTeamLeader(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tr.Current().Settings.Team})
		},
	}
}

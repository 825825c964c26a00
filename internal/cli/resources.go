package cli

import (
	"strings"

	"associate-os/internal/model"
	"associate-os/internal/mutate"

	"github.com/spf13/cobra"
)

func newResourcesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "resources",
		Aliases: []string{"res"},
		Short:   "Company and person resource commands",
	}
	cmd.AddCommand(newResourcesListCmd(app))
	cmd.AddCommand(newResourcesAddCmd(app))
	cmd.AddCommand(newResourcesUpdateCmd(app))
	cmd.AddCommand(newResourcesDeleteCmd(app))
	return cmd
}

func newResourcesListCmd(app *App) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			var want model.ResourceType
			if typ != "" {
				rt, ok := model.ParseResourceType(strings.ToUpper(typ))
				if !ok {
					return writeErr(cmd, mutate.ErrInvalidType)
				}
				want = rt
			}
			out := make([]model.Resource, 0)
			for _, r := range tr.Current().Resources {
				if want != "" && r.Type != want {
					continue
				}
				out = append(out, r)
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out)},
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Only resources of this type (COMPANY|PERSON)")
	return cmd
}

func newResourcesAddCmd(app *App) *cobra.Command {
	var typ string
	var r model.Resource

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			r.Name = args[0]
			r.Type = model.ResourceType(strings.ToUpper(typ))
			id, err := tr.AddResource(cmd.Context(), r)
			if err != nil {
				return writeErr(cmd, err)
			}
			out, err := requireResource(tr.Current(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&typ, "type", string(model.ResourceCompany), "Resource type (COMPANY|PERSON)")
	cmd.Flags().StringVar(&r.Identifier, "identifier", "", "Registration number, personal id or similar")
	cmd.Flags().StringVar(&r.Address, "address", "", "Postal address")
	cmd.Flags().StringVar(&r.Notes, "notes", "", "Free-form notes")
	return cmd
}

func newResourcesUpdateCmd(app *App) *cobra.Command {
	var typ, name, identifier, address, notes string

	cmd := &cobra.Command{
		Use:   "update <resource-id>",
		Short: "Update a resource (only the flags given are changed)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireResource(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			var p mutate.ResourcePatch
			if cmd.Flags().Changed("type") {
				rt := model.ResourceType(strings.ToUpper(typ))
				p.Type = &rt
			}
			if cmd.Flags().Changed("name") {
				p.Name = &name
			}
			if cmd.Flags().Changed("identifier") {
				p.Identifier = &identifier
			}
			if cmd.Flags().Changed("address") {
				p.Address = &address
			}
			if cmd.Flags().Changed("notes") {
				p.Notes = &notes
			}
			if err := tr.UpdateResource(cmd.Context(), args[0], p); err != nil {
				return writeErr(cmd, err)
			}
			out, err := requireResource(tr.Current(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Resource type (COMPANY|PERSON)")
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&identifier, "identifier", "", "Identifier (empty clears)")
	cmd.Flags().StringVar(&address, "address", "", "Address (empty clears)")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes (empty clears)")
	return cmd
}

func newResourcesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <resource-id>",
		Short: "Delete a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := openTracker(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := requireResource(tr.Current(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := tr.DeleteResource(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": args[0]}})
		},
	}
}

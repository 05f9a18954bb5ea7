package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/kanban"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and an empty board",
		Long:  "Write config.yaml if missing and store an empty board in the configured\nbackend. An existing board is left untouched.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := kanban.Init(cmd.Context(), a.settings.board)
			if err != nil {
				return systemErr(fmt.Errorf("initialize board: %w", err))
			}
			out := cmd.OutOrStdout()
			if a.jsonMode {
				return printJSON(out, map[string]any{"created": created, "backend": a.settings.board.Backend})
			}
			if created {
				fmt.Fprintf(out, "Board initialized (%s backend)\n", a.settings.board.Backend)
			} else {
				fmt.Fprintln(out, "Board already initialized")
			}
			return nil
		},
	}
}

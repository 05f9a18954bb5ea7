package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/pkg/kanban"
)

const modulePath = "github.com/mesh-intelligence/kanban"

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the board version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"version": kanban.Version, "module": modulePath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "board v%s\nmodule: %s\n", kanban.Version, modulePath)
			return nil
		},
	}
}

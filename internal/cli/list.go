package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/internal/store"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

func newListCmd(a *app) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:     "list [column]",
		Aliases: []string{"ls"},
		Short:   "Show the board, or the tasks of one column",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				views := s.View(query)
				if len(args) == 1 {
					col, err := resolveColumn(s.Pipeline(), args[0])
					if err != nil {
						return err
					}
					views = filterViews(views, col)
				}
				if a.jsonMode {
					return printJSON(out, views)
				}
				printView(out, views)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only show tasks matching this text")
	return cmd
}

func filterViews(views []board.ColumnView, columnID string) []board.ColumnView {
	for _, v := range views {
		if v.Column.ID == columnID {
			return []board.ColumnView{v}
		}
	}
	return nil
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				task, ok := s.Task(args[0])
				if !ok {
					return fmt.Errorf("%w: %q", types.ErrNotFound, args[0])
				}
				col, _ := s.ColumnOf(task.ID)
				placed := placedTask{Task: task, Column: col}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), placed)
				}
				printTask(cmd.OutOrStdout(), s.Pipeline(), placed)
				return nil
			})
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Find tasks whose title or description contains text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			return a.withStore(cmd.Context(), func(s *store.Store) error {
				hits := s.Search(term)
				placed := make([]placedTask, 0, len(hits))
				for _, t := range hits {
					col, _ := s.ColumnOf(t.ID)
					placed = append(placed, placedTask{Task: t, Column: col})
				}
				if a.jsonMode {
					return printJSON(cmd.OutOrStdout(), placed)
				}
				printPlaced(cmd.OutOrStdout(), s.Pipeline(), placed)
				return nil
			})
		},
	}
}

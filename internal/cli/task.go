package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/internal/store"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// mutate applies the mutation built by build and prints the affected task.
// build sees the open store so it can look up where a task currently is.
func (a *app) mutate(cmd *cobra.Command, taskID string, build func(*store.Store) (board.Mutation, error)) error {
	return a.withStore(cmd.Context(), func(s *store.Store) error {
		m, err := build(s)
		if err != nil {
			return err
		}
		b, err := s.Dispatch(cmd.Context(), m)
		if errors.Is(err, types.ErrNoop) {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do")
			return nil
		}
		if err != nil {
			return err
		}
		if add, ok := m.(board.AddTask); ok {
			taskID = lastAdded(b, s.Pipeline(), add)
		}
		return a.printResult(cmd, s.Pipeline(), b, taskID)
	})
}

// lastAdded returns the ID of the task an AddTask just appended.
func lastAdded(b types.Board, p types.Pipeline, add board.AddTask) string {
	if add.ID != "" {
		return add.ID
	}
	ids := b.Columns[p.First()].TaskIDs
	return ids[len(ids)-1]
}

func (a *app) printResult(cmd *cobra.Command, p types.Pipeline, b types.Board, taskID string) error {
	out := cmd.OutOrStdout()
	task, ok := b.Tasks[taskID]
	if !ok {
		if a.jsonMode {
			return printJSON(out, map[string]string{"deleted": taskID})
		}
		fmt.Fprintf(out, "Deleted %s\n", taskID)
		return nil
	}
	col, _ := board.ColumnOf(b, taskID)
	placed := placedTask{Task: task, Column: col}
	if a.jsonMode {
		return printJSON(out, placed)
	}
	printTask(out, p, placed)
	return nil
}

// currentColumn finds the column holding taskID.
func currentColumn(s *store.Store, taskID string) (string, error) {
	col, ok := s.ColumnOf(taskID)
	if !ok {
		return "", fmt.Errorf("%w: %q", types.ErrNotFound, taskID)
	}
	return col, nil
}

func newAddCmd(a *app) *cobra.Command {
	var description string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task to the first column",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := board.AddTask{Title: strings.Join(args, " "), Description: description}
			return a.mutate(cmd, "", func(*store.Store) (board.Mutation, error) { return m, nil })
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change a task's title or description",
		Long:  "Change a task's title or description. A blank title keeps the current one;\n--description \"\" clears the description.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := board.UpdateTask{ID: args[0]}
			if cmd.Flags().Changed("title") {
				m.Title = &title
			}
			if cmd.Flags().Changed("description") {
				m.Description = &description
			}
			if m.Title == nil && m.Description == nil {
				return errors.New("edit: pass --title and/or --description")
			}
			return a.mutate(cmd, m.ID, func(*store.Store) (board.Mutation, error) { return m, nil })
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := board.DeleteTask{ID: args[0]}
			return a.mutate(cmd, m.ID, func(*store.Store) (board.Mutation, error) { return m, nil })
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/internal/store"
)

func newMoveCmd(a *app) *cobra.Command {
	var index int
	cmd := &cobra.Command{
		Use:   "move <id> <column>",
		Short: "Move a task to a position in any column",
		Long:  "Move a task to a column given by ID or title. --index sets the position\n(0 is the top); without it the task goes to the bottom.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			return a.mutate(cmd, taskID, func(s *store.Store) (board.Mutation, error) {
				src, err := currentColumn(s, taskID)
				if err != nil {
					return nil, err
				}
				dst, err := resolveColumn(s.Pipeline(), args[1])
				if err != nil {
					return nil, err
				}
				srcTasks, err := s.TasksOf(src)
				if err != nil {
					return nil, err
				}
				m := board.MoveTask{
					TaskID:              taskID,
					SourceColumnID:      src,
					DestinationColumnID: dst,
					DestinationIndex:    index,
				}
				for i, t := range srcTasks {
					if t.ID == taskID {
						m.SourceIndex = i
					}
				}
				if !cmd.Flags().Changed("index") || index < 0 {
					dstTasks, err := s.TasksOf(dst)
					if err != nil {
						return nil, err
					}
					m.DestinationIndex = len(dstTasks)
				}
				return m, nil
			})
		},
	}
	cmd.Flags().IntVarP(&index, "index", "i", -1, "position in the destination column")
	return cmd
}

func newAdvanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "advance <id>",
		Short: "Move a task to the next column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			return a.mutate(cmd, taskID, func(s *store.Store) (board.Mutation, error) {
				col, err := currentColumn(s, taskID)
				if err != nil {
					return nil, err
				}
				return board.MoveToNextStage{TaskID: taskID, CurrentColumnID: col}, nil
			})
		},
	}
}

func newStageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stage <id> <column>",
		Short: "Move a task to the end of another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			return a.mutate(cmd, taskID, func(s *store.Store) (board.Mutation, error) {
				col, err := currentColumn(s, taskID)
				if err != nil {
					return nil, err
				}
				target, err := resolveColumn(s.Pipeline(), args[1])
				if err != nil {
					return nil, err
				}
				return board.MoveToSpecificStage{TaskID: taskID, CurrentColumnID: col, TargetColumnID: target}, nil
			})
		},
	}
}

func newReopenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Send a task back to the first column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			return a.mutate(cmd, taskID, func(s *store.Store) (board.Mutation, error) {
				col, err := currentColumn(s, taskID)
				if err != nil {
					return nil, err
				}
				return board.MoveToSpecificStage{TaskID: taskID, CurrentColumnID: col, TargetColumnID: s.Pipeline().First()}, nil
			})
		},
	}
}

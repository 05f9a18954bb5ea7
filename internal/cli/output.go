package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/kanban/internal/board"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// placedTask is a task together with the column holding it.
type placedTask struct {
	Task   types.Task `json:"task"`
	Column string     `json:"column"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func printPlaced(w io.Writer, p types.Pipeline, tasks []placedTask) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCOLUMN")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Task.ID, truncate(t.Task.Title, 48), columnTitle(p, t.Column))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %d task(s)\n", len(tasks))
}

func printTask(w io.Writer, p types.Pipeline, t placedTask) {
	fmt.Fprintf(w, "ID:          %s\n", t.Task.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Task.Title)
	fmt.Fprintf(w, "Column:      %s\n", columnTitle(p, t.Column))
	if t.Task.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", t.Task.Description)
	}
}

func printView(w io.Writer, views []board.ColumnView) {
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := fmt.Sprintf("%s (%d)", v.Column.Title, v.Count)
		if v.Action != nil {
			header += "  [" + v.Action.Label + "]"
		}
		fmt.Fprintln(w, header)
		fmt.Fprintln(w, strings.Repeat("-", len(header)))
		for _, t := range v.Tasks {
			fmt.Fprintf(w, "  %s  %s\n", t.ID, truncate(t.Title, 60))
		}
	}
}

func columnTitle(p types.Pipeline, id string) string {
	if s, ok := p.Stage(id); ok {
		return s.Title
	}
	return id
}

// resolveColumn accepts a column ID or, ignoring case, a column title.
func resolveColumn(p types.Pipeline, arg string) (string, error) {
	if p.Has(arg) {
		return arg, nil
	}
	for _, s := range p.Stages {
		if strings.EqualFold(s.Title, arg) {
			return s.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %q", types.ErrColumnNotFound, arg)
}

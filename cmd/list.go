package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/internal/view"
)

var (
	listStatus string
	listLimit  int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, newest first",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending, in_progress, done or an alias)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Limit results")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	opts := db.ListOptions{Limit: listLimit}
	if listStatus != "" {
		status, err := resolveStatus(listStatus)
		if err != nil {
			return err
		}
		opts.Status = status
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	tasks, err := d.ListTasks(opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if tasks == nil {
			tasks = []*db.Task{}
		}
		return printJSON(out, tasks)
	default:
		fmt.Fprintln(out, view.RenderTasks(tasks))
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	task, err := d.GetTask(id)
	if err != nil {
		return taskError(id, err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, task)
	default:
		printTask(out, task)
	}
	return nil
}

// taskError rewrites ErrNotFound with the task id.
func taskError(id int64, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("task with id %d not found", id)
	}
	return err
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
)

var (
	updateTitle       string
	updateDescription string
	updateStatus      string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status (pending, in_progress, done or an alias)")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	input := db.UpdateTaskInput{}
	if cmd.Flags().Changed("title") {
		input.Title = &updateTitle
	}
	if cmd.Flags().Changed("description") {
		input.Description = &updateDescription
	}
	if updateStatus != "" {
		status, err := resolveStatus(updateStatus)
		if err != nil {
			return err
		}
		input.Status = &status
	}
	if input.Empty() {
		return fmt.Errorf("nothing to update (use --title, --description or --status)")
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	task, err := d.UpdateTask(id, input)
	if err != nil {
		return taskError(id, err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, task)
	default:
		fmt.Fprintf(out, "Updated: %d\n", task.ID)
	}
	return nil
}

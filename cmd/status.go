package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change a task's status",
	Long: `Change a task's status. The status may be canonical (pending, in_progress,
done) or any Persian or English alias, e.g. "انجام شده", "completed", "todo".`,
	Args: cobra.ExactArgs(2),
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	status, err := resolveStatus(args[1])
	if err != nil {
		return err
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	task, err := d.UpdateTaskStatus(id, status)
	if err != nil {
		return taskError(id, err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, task)
	default:
		fmt.Fprintf(out, "Task %d: %s\n", task.ID, task.Status)
	}
	return nil
}

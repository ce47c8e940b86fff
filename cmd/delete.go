package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.DeleteTask(id); err != nil {
		return taskError(id, err)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, map[string]any{"deleted": true, "id": id})
	default:
		fmt.Fprintf(out, "Deleted: %d\n", id)
	}
	return nil
}

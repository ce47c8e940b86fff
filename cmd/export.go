package cmd

import (
	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
)

var exportStatus string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tasks to JSON (writes stdout)",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "Only export tasks with this status")
	rootCmd.AddCommand(exportCmd)
}

type exportData struct {
	Tasks []*db.Task `json:"tasks"`
}

func runExport(cmd *cobra.Command, args []string) error {
	opts := db.ListOptions{}
	if exportStatus != "" {
		status, err := resolveStatus(exportStatus)
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
	if tasks == nil {
		tasks = []*db.Task{}
	}
	return printJSON(cmd.OutOrStdout(), exportData{Tasks: tasks})
}

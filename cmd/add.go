package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	RunE:  runAdd,
}

var (
	addDescription string
	addStatus      string
	addStdin       bool
)

func init() {
	addCmd.Flags().StringVar(&addDescription, "description", "", "Task description")
	addCmd.Flags().StringVar(&addStatus, "status", "", "Initial status (pending, in_progress, done or an alias)")
	addCmd.Flags().BoolVar(&addStdin, "stdin", false, "Read title from stdin")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	var title string
	if addStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		title = strings.TrimSpace(string(data))
	} else if len(args) > 0 {
		title = strings.Join(args, " ")
	} else {
		return fmt.Errorf("title is required (provide as argument or use --stdin)")
	}

	input := db.CreateTaskInput{Title: title}
	if cmd.Flags().Changed("description") {
		input.Description = &addDescription
	}
	if addStatus != "" {
		status, err := resolveStatus(addStatus)
		if err != nil {
			return err
		}
		input.Status = status
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	task, err := d.CreateTask(input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, task)
	default:
		fmt.Fprintf(out, "Added: %d\n", task.ID)
	}
	return nil
}

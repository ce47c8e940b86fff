package cmd

import (
	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/mcpserver"
	"github.com/todomcp/todo/internal/tasks"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the task MCP server over stdio",
	Long: `Serve the task tools (list_tasks, get_task_by_id, create_task, update_task,
update_task_status, delete_task) and prompts over MCP on stdin/stdout.
Logs go to stderr.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	s := mcpserver.New(tasks.NewExecutor(store, logger), version)
	logger.Info("serving MCP on stdio", "server", mcpserver.Name)
	return mcpserver.ServeStdio(s)
}

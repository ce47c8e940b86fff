// Package mcpserver exposes the task tools and prompts over the Model Context
// Protocol.
package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/todomcp/todo/internal/tasks"
)

// Name is the server name reported during initialization.
const Name = "todo-mcp-server"

var statusEnum = mcp.Enum("pending", "in_progress", "done")

// New builds an MCP server whose tools run on exec.
func New(exec *tasks.Executor, version string) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		version,
		server.WithToolCapabilities(false),
		server.WithPromptCapabilities(false),
		server.WithRecovery(),
	)

	registerTools(s, exec)
	registerPrompts(s)

	return s
}

// ServeStdio serves s on stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func registerTools(s *server.MCPServer, exec *tasks.Executor) {
	s.AddTool(mcp.NewTool(tasks.ToolListTasks,
		mcp.WithDescription("List all tasks. Optionally filter by status (pending, in_progress, done)."),
		mcp.WithTitleAnnotation("List Tasks"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithString("status",
			mcp.Description("Filter tasks by status"),
			statusEnum,
		),
	), toolHandler(exec, tasks.ToolListTasks))

	s.AddTool(mcp.NewTool(tasks.ToolGetTaskByID,
		mcp.WithDescription("Get details of a specific task by its ID."),
		mcp.WithTitleAnnotation("Get Task by ID"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The task ID"),
		),
	), toolHandler(exec, tasks.ToolGetTaskByID))

	s.AddTool(mcp.NewTool(tasks.ToolCreateTask,
		mcp.WithDescription("Create a new task with a title and optional description and status."),
		mcp.WithTitleAnnotation("Create Task"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("The task title (required, max 200 chars)"),
		),
		mcp.WithString("description",
			mcp.Description("The task description (optional)"),
		),
		mcp.WithString("status",
			mcp.Description("Initial task status (default: pending)"),
			statusEnum,
		),
	), toolHandler(exec, tasks.ToolCreateTask))

	s.AddTool(mcp.NewTool(tasks.ToolUpdateTask,
		mcp.WithDescription("Update an existing task. Can update title, description, and/or status."),
		mcp.WithTitleAnnotation("Update Task"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The task ID to update"),
		),
		mcp.WithString("title",
			mcp.Description("New task title (max 200 chars)"),
		),
		mcp.WithString("description",
			mcp.Description("New task description"),
		),
		mcp.WithString("status",
			mcp.Description("New task status"),
			statusEnum,
		),
	), toolHandler(exec, tasks.ToolUpdateTask))

	s.AddTool(mcp.NewTool(tasks.ToolUpdateTaskStatus,
		mcp.WithDescription("Update the status of an existing task."),
		mcp.WithTitleAnnotation("Update Task Status"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The task ID"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("The new task status"),
			statusEnum,
		),
	), toolHandler(exec, tasks.ToolUpdateTaskStatus))

	s.AddTool(mcp.NewTool(tasks.ToolDeleteTask,
		mcp.WithDescription("Delete a task by its ID."),
		mcp.WithTitleAnnotation("Delete Task"),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithNumber("id",
			mcp.Required(),
			mcp.Description("The task ID to delete"),
		),
	), toolHandler(exec, tasks.ToolDeleteTask))
}

// toolHandler runs a tool on exec and returns its JSON envelope as text.
// Tool failures keep the {"error":{...}} body and set IsError.
func toolHandler(exec *tasks.Executor, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, isErr := exec.ExecuteJSON(ctx, name, req.GetArguments())
		if isErr {
			slog.Debug("mcp tool error", "tool", name)
			return mcp.NewToolResultError(text), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

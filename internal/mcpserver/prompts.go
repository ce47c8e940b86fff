package mcpserver

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

//go:embed prompts/task_management_guide.md
var taskManagementGuide string

//go:embed prompts/task_status_workflow.md
var taskStatusWorkflow string

//go:embed prompts/create_task_template.md
var createTaskTemplate string

//go:embed prompts/daily_task_summary.md
var dailyTaskSummary string

func registerPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt("task_management_guide",
		mcp.WithPromptDescription("A comprehensive guide for managing tasks using this Todo Service."),
	), staticPrompt("Task management guide", taskManagementGuide))

	s.AddPrompt(mcp.NewPrompt("task_status_workflow",
		mcp.WithPromptDescription("Describes the typical workflow for task status transitions."),
	), staticPrompt("Task status workflow", taskStatusWorkflow))

	s.AddPrompt(mcp.NewPrompt("create_task_template",
		mcp.WithPromptDescription("Generate a template for creating a well-structured task."),
		mcp.WithArgument("task_title",
			mcp.ArgumentDescription("The title of the task to create"),
			mcp.RequiredArgument(),
		),
	), handleCreateTaskTemplate)

	s.AddPrompt(mcp.NewPrompt("daily_task_summary",
		mcp.WithPromptDescription("Generate a template for daily task review and planning."),
	), staticPrompt("Daily task summary", dailyTaskSummary))
}

func staticPrompt(description, text string) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return userPrompt(description, text), nil
	}
}

func handleCreateTaskTemplate(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	title := strings.TrimSpace(req.Params.Arguments["task_title"])
	if title == "" {
		return nil, fmt.Errorf("task_title is required")
	}
	text := strings.ReplaceAll(createTaskTemplate, "{{task_title}}", title)
	return userPrompt("Create task template", text), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	})
}

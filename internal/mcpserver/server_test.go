package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/internal/tasks"
	"github.com/todomcp/todo/testutil"
)

func setupMCPTest(t *testing.T) (*tasks.Executor, *db.SQLiteStore) {
	t.Helper()
	d := testutil.SetupTestDB(t)
	return tasks.NewExecutor(d, nil), d
}

func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	require.NotEmpty(t, result.Content)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &body))
	return body
}

func TestHandleCreateTask(t *testing.T) {
	exec, _ := setupMCPTest(t)

	result, err := toolHandler(exec, tasks.ToolCreateTask)(context.Background(), makeReq(map[string]interface{}{
		"title":       "Buy groceries",
		"description": "milk and bread",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)

	task := resultJSON(t, result)["task"].(map[string]any)
	assert.Equal(t, "Buy groceries", task["title"])
	assert.Equal(t, "pending", task["status"])
	assert.Equal(t, float64(1), task["id"])
}

func TestHandleCreateTask_MissingTitle(t *testing.T) {
	exec, _ := setupMCPTest(t)

	result, err := toolHandler(exec, tasks.ToolCreateTask)(context.Background(), makeReq(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	body := resultJSON(t, result)
	assert.Equal(t, "MISSING_PARAMETER", body["error"].(map[string]any)["code"])
}

func TestHandleListTasks(t *testing.T) {
	exec, d := setupMCPTest(t)
	_, err := d.CreateTask(db.CreateTaskInput{Title: "a", Status: db.StatusDone})
	require.NoError(t, err)
	_, err = d.CreateTask(db.CreateTaskInput{Title: "b"})
	require.NoError(t, err)

	result, err := toolHandler(exec, tasks.ToolListTasks)(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.Len(t, resultJSON(t, result)["tasks"], 2)

	result, err = toolHandler(exec, tasks.ToolListTasks)(context.Background(), makeReq(map[string]interface{}{
		"status": "done",
	}))
	require.NoError(t, err)
	list := resultJSON(t, result)["tasks"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].(map[string]any)["title"])
}

func TestHandleListTasks_Empty(t *testing.T) {
	exec, _ := setupMCPTest(t)

	result, err := toolHandler(exec, tasks.ToolListTasks)(context.Background(), makeReq(nil))
	require.NoError(t, err)
	assert.Contains(t, result.Content[0].(mcp.TextContent).Text, `"tasks": []`)
}

func TestHandleUpdateTaskStatus(t *testing.T) {
	exec, d := setupMCPTest(t)
	task, err := d.CreateTask(db.CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	result, err := toolHandler(exec, tasks.ToolUpdateTaskStatus)(context.Background(), makeReq(map[string]interface{}{
		"id":     float64(task.ID),
		"status": "done",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "done", resultJSON(t, result)["task"].(map[string]any)["status"])

	result, err = toolHandler(exec, tasks.ToolUpdateTaskStatus)(context.Background(), makeReq(map[string]interface{}{
		"id":     float64(task.ID),
		"status": "finished",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "INVALID_STATUS", resultJSON(t, result)["error"].(map[string]any)["code"])
}

func TestHandleUpdateTask_TaskIDAlias(t *testing.T) {
	exec, d := setupMCPTest(t)
	task, err := d.CreateTask(db.CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	result, err := toolHandler(exec, tasks.ToolUpdateTask)(context.Background(), makeReq(map[string]interface{}{
		"task_id":     float64(task.ID),
		"description": "details",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "details", resultJSON(t, result)["task"].(map[string]any)["description"])
}

func TestHandleDeleteTask(t *testing.T) {
	exec, d := setupMCPTest(t)
	task, err := d.CreateTask(db.CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	result, err := toolHandler(exec, tasks.ToolDeleteTask)(context.Background(), makeReq(map[string]interface{}{
		"id": float64(task.ID),
	}))
	require.NoError(t, err)
	body := resultJSON(t, result)
	assert.Equal(t, true, body["deleted"])
	assert.Equal(t, float64(task.ID), body["id"])

	result, err = toolHandler(exec, tasks.ToolDeleteTask)(context.Background(), makeReq(map[string]interface{}{
		"id": float64(task.ID),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].(mcp.TextContent).Text, "Task with id 1 not found")
}

func TestHandleGetTaskByID_NotFound(t *testing.T) {
	exec, _ := setupMCPTest(t)

	result, err := toolHandler(exec, tasks.ToolGetTaskByID)(context.Background(), makeReq(map[string]interface{}{
		"id": float64(42),
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "NOT_FOUND", resultJSON(t, result)["error"].(map[string]any)["code"])
}

func TestHandleCreateTaskTemplate(t *testing.T) {
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"task_title": "Write report"}

	res, err := handleCreateTaskTemplate(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.RoleUser, res.Messages[0].Role)

	text := res.Messages[0].Content.(mcp.TextContent).Text
	assert.Contains(t, text, "# Create Task: Write report")
	assert.Contains(t, text, `title="Write report"`)
	assert.NotContains(t, text, "{{task_title}}")
}

func TestHandleCreateTaskTemplate_MissingTitle(t *testing.T) {
	_, err := handleCreateTaskTemplate(context.Background(), mcp.GetPromptRequest{})
	assert.Error(t, err)
}

func TestStaticPrompts(t *testing.T) {
	for _, text := range []string{taskManagementGuide, taskStatusWorkflow, dailyTaskSummary} {
		assert.NotEmpty(t, text)
	}
	assert.Contains(t, taskManagementGuide, "# Task Management Guide")
	assert.Contains(t, taskStatusWorkflow, "pending → in_progress → done")

	res, err := staticPrompt("Task management guide", taskManagementGuide)(context.Background(), mcp.GetPromptRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Task management guide", res.Description)
}

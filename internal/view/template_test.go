package view

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, text string) map[string]any {
	t.Helper()
	m, err := DecodeResult(text)
	require.NoError(t, err)
	return m
}

func TestRenderResult_Error(t *testing.T) {
	result := decode(t, `{"error":{"code":"NOT_FOUND","message":"Task with id 9 not found"}}`)

	// The error layout wins regardless of the tool.
	for _, tool := range []string{"list_tasks", "get_task_by_id", "delete_task", "unknown"} {
		assert.Equal(t, "❌ Error: [NOT_FOUND] Task with id 9 not found", RenderResult(tool, result))
	}
}

func TestRenderResult_ErrorDefaults(t *testing.T) {
	assert.Equal(t, "❌ Error: [ERROR] Unknown error", RenderResult("create_task", decode(t, `{"error":{}}`)))
	assert.Equal(t, "❌ Error: [ERROR] boom", RenderResult("create_task", decode(t, `{"error":"boom"}`)))
}

func TestRenderResult_EmptyList(t *testing.T) {
	out := RenderResult("list_tasks", decode(t, `{"tasks":[]}`))
	assert.Equal(t, "📋 Found 0 task(s):\n\n"+NoTasks, out)
	assert.NotContains(t, out, "┌")
}

func TestRenderResult_List(t *testing.T) {
	out := RenderResult("list_tasks", decode(t, `{"tasks":[
		{"id":2,"title":"Buy groceries","status":"pending","created_at":"2026-01-05T10:00:00.123456+00:00"},
		{"id":1,"title":"خرید نان","status":"done","created_at":"2026-01-04T09:30:00.000000+00:00"}
	]}`))

	assert.True(t, strings.HasPrefix(out, "📋 Found 2 task(s):\n\n┌"))
	assert.Contains(t, out, "Buy groceries")
	assert.Contains(t, out, "خرید نان")
	assert.Contains(t, out, "2026-01-05T10:00:00")
	assert.NotContains(t, out, ".123456")
}

func TestRenderResult_Record(t *testing.T) {
	body := `{"task":{"updated_at":"2026-01-05T10:00:00","title":"خرید <نان>","status":"pending","id":3,"description":null,"created_at":"2026-01-05T10:00:00"}}`

	out := RenderResult("get_task_by_id", decode(t, body))
	want := "📝 Task Details:\n\n" + `{
  "id": 3,
  "title": "خرید <نان>",
  "description": null,
  "status": "pending",
  "created_at": "2026-01-05T10:00:00",
  "updated_at": "2026-01-05T10:00:00"
}`
	assert.Equal(t, want, out)

	assert.True(t, strings.HasPrefix(RenderResult("create_task", decode(t, body)), "✅ Task created successfully!\n\n{"))
	assert.True(t, strings.HasPrefix(RenderResult("update_task_status", decode(t, body)), "✅ Task status updated successfully!\n\n{"))
}

func TestRenderResult_RecordMissingTask(t *testing.T) {
	out := RenderResult("get_task_by_id", decode(t, `{}`))
	assert.Equal(t, "📝 Task Details:\n\n{}", out)
}

func TestRenderResult_Delete(t *testing.T) {
	out := RenderResult("delete_task", decode(t, `{"deleted":true,"id":7}`))
	assert.Equal(t, "✅ Task 7 deleted successfully!", out)
}

func TestRenderResult_UnknownTool(t *testing.T) {
	out := RenderResult("something_else", decode(t, `{"b":1,"a":"x"}`))
	assert.Equal(t, "{\n  \"a\": \"x\",\n  \"b\": 1\n}", out)
}

func TestDecodeResult_Invalid(t *testing.T) {
	_, err := DecodeResult("not json")
	assert.Error(t, err)
}

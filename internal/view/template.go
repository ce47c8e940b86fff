package view

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NoTasks is printed instead of a table when a listing is empty.
const NoTasks = "هیچ تسکی یافت نشد / No tasks found"

// recordLabels are printed above a single task record, keyed by tool name.
var recordLabels = map[string]string{
	"get_task_by_id":     "📝 Task Details:",
	"create_task":        "✅ Task created successfully!",
	"update_task":        "✅ Task updated successfully!",
	"update_task_status": "✅ Task status updated successfully!",
}

// recordKeys is the display order of task fields.
var recordKeys = []string{"id", "title", "description", "status", "created_at", "updated_at"}

// DecodeResult parses a JSON tool result. Numbers are kept as json.Number so
// ids print exactly as sent.
func DecodeResult(text string) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var result map[string]any
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode tool result: %w", err)
	}
	if result == nil {
		result = map[string]any{}
	}
	return result, nil
}

// RenderResult renders a decoded tool result for the console. An "error"
// entry always wins over the tool-specific layout.
func RenderResult(tool string, result map[string]any) string {
	if e, ok := result["error"]; ok {
		return renderError(e)
	}

	switch tool {
	case "list_tasks":
		tasks, _ := result["tasks"].([]any)
		return fmt.Sprintf("📋 Found %d task(s):\n\n", len(tasks)) + RenderTaskTable(tasks)
	case "delete_task":
		return fmt.Sprintf("✅ Task %s deleted successfully!", scalar(result["id"]))
	}

	if label, ok := recordLabels[tool]; ok {
		return label + "\n\n" + renderRecord(result["task"])
	}
	return indentJSON(result)
}

func renderError(e any) string {
	code, message := "ERROR", "Unknown error"
	switch v := e.(type) {
	case map[string]any:
		if c, ok := v["code"]; ok && c != nil {
			code = scalar(c)
		}
		if m, ok := v["message"]; ok && m != nil {
			message = scalar(m)
		}
	case string:
		message = v
	}
	return fmt.Sprintf("❌ Error: [%s] %s", code, message)
}

// renderRecord prints a task as indented JSON with its fields in display
// order. Unknown fields follow in key order.
func renderRecord(v any) string {
	if v == nil {
		return "{}"
	}
	m, ok := v.(map[string]any)
	if !ok || len(m) == 0 {
		return indentJSON(v)
	}

	keys := make([]string, 0, len(m))
	for _, k := range recordKeys {
		if _, ok := m[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range m {
		if !contains(recordKeys, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	keys = append(keys, extra...)

	var b strings.Builder
	b.WriteString("{\n")
	for i, k := range keys {
		fmt.Fprintf(&b, "  %s: %s", encode(k, ""), encode(m[k], "  "))
		if i < len(keys)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}

func indentJSON(v any) string {
	return encode(v, "")
}

// encode marshals v with two-space indentation, leaving non-ASCII text and
// HTML characters literal.
func encode(v any, prefix string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(prefix, "  ")
	if err := enc.Encode(v); err != nil {
		return strconv.Quote(fmt.Sprint(v))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// scalar renders a decoded JSON scalar the way it appeared on the wire.
func scalar(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

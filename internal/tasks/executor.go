// Package tasks executes task tool calls against a store and reports failures
// as coded errors that survive a JSON round trip.
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/todomcp/todo/internal/db"
)

// Error codes reported in {"error":{"code","message"}} envelopes.
const (
	CodeMissingParameter = "MISSING_PARAMETER"
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeValidation       = "VALIDATION_ERROR"
	CodeUnknownTool      = "UNKNOWN_TOOL"
	CodeInternal         = "INTERNAL_ERROR"
)

// Tool names.
const (
	ToolListTasks        = "list_tasks"
	ToolGetTaskByID      = "get_task_by_id"
	ToolCreateTask       = "create_task"
	ToolUpdateTask       = "update_task"
	ToolUpdateTaskStatus = "update_task_status"
	ToolDeleteTask       = "delete_task"
)

// Tools lists every tool Execute understands.
var Tools = []string{
	ToolListTasks, ToolGetTaskByID, ToolCreateTask,
	ToolUpdateTask, ToolUpdateTaskStatus, ToolDeleteTask,
}

// Error is a tool failure with a stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

func newError(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Executor runs tool calls against a store.
type Executor struct {
	store  db.Store
	logger *slog.Logger
}

func NewExecutor(store db.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: store, logger: logger}
}

// Execute runs a tool and always returns a result envelope: the success
// payload, or {"error":{"code","message"}}. The error return is reserved for
// callers that transport results and is always nil here.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	result, err := e.Call(ctx, name, args)
	if err != nil {
		return ErrorEnvelope(err), nil
	}
	return result, nil
}

// ExecuteJSON is Execute rendered as indented JSON text.
func (e *Executor) ExecuteJSON(ctx context.Context, name string, args map[string]any) (string, bool) {
	result, err := e.Call(ctx, name, args)
	isErr := err != nil
	var body any = result
	if isErr {
		body = ErrorEnvelope(err)
	}
	data, merr := json.MarshalIndent(body, "", "  ")
	if merr != nil {
		data, _ = json.Marshal(ErrorEnvelope(merr))
		isErr = true
	}
	return string(data), isErr
}

// ErrorEnvelope wraps err in the {"error":{...}} shape. Errors other than
// *Error are reported as INTERNAL_ERROR.
func ErrorEnvelope(err error) map[string]any {
	var te *Error
	if !errors.As(err, &te) {
		te = newError(CodeInternal, "An unexpected error occurred: %v", err)
	}
	return map[string]any{"error": map[string]any{"code": te.Code, "message": te.Message}}
}

// Call dispatches a tool call. Failures are returned as *Error.
func (e *Executor) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}

	e.logger.Debug("tool call", "tool", name, "args", args)

	var (
		result map[string]any
		err    error
	)
	switch name {
	case ToolListTasks:
		result, err = e.listTasks(args)
	case ToolGetTaskByID:
		result, err = e.getTask(args)
	case ToolCreateTask:
		result, err = e.createTask(args)
	case ToolUpdateTask:
		result, err = e.updateTask(args)
	case ToolUpdateTaskStatus:
		result, err = e.updateTaskStatus(args)
	case ToolDeleteTask:
		result, err = e.deleteTask(args)
	default:
		err = newError(CodeUnknownTool, "Unknown tool: %s", name)
	}

	if err != nil {
		var te *Error
		if !errors.As(err, &te) {
			e.logger.Error("tool failed", "tool", name, "error", err)
			err = newError(CodeInternal, "An unexpected error occurred: %v", err)
		} else {
			e.logger.Debug("tool rejected", "tool", name, "code", te.Code)
		}
		return nil, err
	}
	return result, nil
}

func (e *Executor) listTasks(args map[string]any) (map[string]any, error) {
	var opts db.ListOptions
	if raw, ok := optionalString(args, "status"); ok && raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			return nil, err
		}
		opts.Status = status
	}

	tasks, err := e.store.ListTasks(opts)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*db.Task{}
	}
	return map[string]any{"tasks": tasks}, nil
}

func (e *Executor) getTask(args map[string]any) (map[string]any, error) {
	id, err := requireID(args)
	if err != nil {
		return nil, err
	}
	task, err := e.store.GetTask(id)
	if err != nil {
		return nil, storeError(err, id)
	}
	return map[string]any{"task": task}, nil
}

func (e *Executor) createTask(args map[string]any) (map[string]any, error) {
	title, _ := optionalString(args, "title")
	if title == "" {
		return nil, newError(CodeMissingParameter, "Parameter 'title' is required")
	}
	if err := checkTitle(title); err != nil {
		return nil, err
	}

	input := db.CreateTaskInput{Title: title, Status: db.StatusPending}
	if d, ok := optionalString(args, "description"); ok {
		input.Description = &d
	}
	if raw, ok := optionalString(args, "status"); ok && raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			return nil, err
		}
		input.Status = status
	}

	task, err := e.store.CreateTask(input)
	if err != nil {
		return nil, storeError(err, 0)
	}
	return map[string]any{"task": task}, nil
}

func (e *Executor) updateTask(args map[string]any) (map[string]any, error) {
	id, err := requireID(args)
	if err != nil {
		return nil, err
	}

	var input db.UpdateTaskInput
	if title, ok := optionalString(args, "title"); ok {
		if title == "" {
			return nil, newError(CodeValidation, "Title must not be empty")
		}
		if err := checkTitle(title); err != nil {
			return nil, err
		}
		input.Title = &title
	}
	if d, ok := optionalString(args, "description"); ok {
		input.Description = &d
	}
	if raw, ok := optionalString(args, "status"); ok && raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			return nil, err
		}
		input.Status = &status
	}
	if input.Empty() {
		return nil, newError(CodeValidation, "No fields to update")
	}

	task, err := e.store.UpdateTask(id, input)
	if err != nil {
		return nil, storeError(err, id)
	}
	return map[string]any{"task": task}, nil
}

func (e *Executor) updateTaskStatus(args map[string]any) (map[string]any, error) {
	id, err := requireID(args)
	if err != nil {
		return nil, err
	}
	raw, _ := optionalString(args, "status")
	if raw == "" {
		return nil, newError(CodeMissingParameter, "Parameter 'status' is required")
	}
	status, err := parseStatus(raw)
	if err != nil {
		return nil, err
	}

	task, err := e.store.UpdateTaskStatus(id, status)
	if err != nil {
		return nil, storeError(err, id)
	}
	return map[string]any{"task": task}, nil
}

func (e *Executor) deleteTask(args map[string]any) (map[string]any, error) {
	id, err := requireID(args)
	if err != nil {
		return nil, err
	}
	if err := e.store.DeleteTask(id); err != nil {
		return nil, storeError(err, id)
	}
	return map[string]any{"deleted": true, "id": id}, nil
}

// storeError maps store failures onto tool error codes.
func storeError(err error, id int64) error {
	if errors.Is(err, db.ErrNotFound) {
		return newError(CodeNotFound, "Task with id %d not found", id)
	}
	var verr *db.ValidationError
	if errors.As(err, &verr) {
		return newError(CodeValidation, "%s", verr.Error())
	}
	if errors.Is(err, db.ErrInvalidStatus) {
		return newError(CodeInvalidStatus, "%s", err.Error())
	}
	return err
}

func checkTitle(title string) error {
	if utf8.RuneCountInString(title) > db.MaxTitleLength {
		return newError(CodeValidation, "Title must be %d characters or less", db.MaxTitleLength)
	}
	return nil
}

func parseStatus(raw string) (db.Status, error) {
	status, err := db.ParseStatus(raw)
	if err != nil {
		return "", newError(CodeInvalidStatus, "Invalid status: %s. Must be one of: pending, in_progress, done", raw)
	}
	return status, nil
}

// requireID reads the task id from "id", or "task_id" as sent by some
// clients.
func requireID(args map[string]any) (int64, error) {
	v, ok := args["id"]
	if !ok || v == nil {
		v, ok = args["task_id"]
	}
	if !ok || v == nil {
		return 0, newError(CodeMissingParameter, "Parameter 'id' is required")
	}
	id, ok := toInt64(v)
	if !ok {
		return 0, newError(CodeValidation, "Parameter 'id' must be an integer, got %v", v)
	}
	return id, nil
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || math.IsNaN(n) {
			return 0, false
		}
		// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
		if n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

// optionalString returns args[key] as a string. A present non-string value
// is formatted with fmt.
func optionalString(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

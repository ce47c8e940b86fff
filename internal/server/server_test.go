package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/testutil"
)

func setupTestServer(t *testing.T) (*Server, db.Store) {
	t.Helper()
	store := testutil.SetupTestDB(t)
	srv := New(store, DefaultConfig(), nil)
	return srv, store
}

func doRequest(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRootEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]string](t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "Todo Service API", resp["service"])
	assert.Equal(t, "1.0.0", resp["version"])
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"status": "healthy"}, decode[map[string]string](t, w))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestUnknownPathIs404(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskCRUD(t *testing.T) {
	srv, _ := setupTestServer(t)

	// Create
	w := doRequest(t, srv, "POST", "/api/v1/tasks", map[string]any{
		"title":       "Complete project documentation",
		"description": "Write README",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "pending", created["status"])
	assert.Equal(t, "Write README", created["description"])
	assert.NotEmpty(t, created["created_at"])

	// Get
	w = doRequest(t, srv, "GET", "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Complete project documentation", decode[map[string]any](t, w)["title"])

	// Update (PUT)
	w = doRequest(t, srv, "PUT", "/api/v1/tasks/1", map[string]any{"status": "in_progress"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[map[string]any](t, w)
	assert.Equal(t, "in_progress", updated["status"])
	assert.Equal(t, "Complete project documentation", updated["title"])

	// Partial update (PATCH)
	w = doRequest(t, srv, "PATCH", "/api/v1/tasks/1", map[string]any{"title": "Docs"})
	require.Equal(t, http.StatusOK, w.Code)
	patched := decode[map[string]any](t, w)
	assert.Equal(t, "Docs", patched["title"])
	assert.Equal(t, "in_progress", patched["status"])

	// Delete
	w = doRequest(t, srv, "DELETE", "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]any{"deleted": true, "id": float64(1)}, decode[map[string]any](t, w))

	w = doRequest(t, srv, "GET", "/api/v1/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListTasks(t *testing.T) {
	srv, store := setupTestServer(t)

	w := doRequest(t, srv, "GET", "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))

	_, err := store.CreateTask(db.CreateTaskInput{Title: "first"})
	require.NoError(t, err)
	_, err = store.CreateTask(db.CreateTaskInput{Title: "second", Status: db.StatusDone})
	require.NoError(t, err)

	w = doRequest(t, srv, "GET", "/api/v1/tasks", nil)
	all := decode[[]map[string]any](t, w)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0]["title"], "newest first")

	w = doRequest(t, srv, "GET", "/api/v1/tasks?status=done", nil)
	done := decode[[]map[string]any](t, w)
	require.Len(t, done, 1)
	assert.Equal(t, "second", done[0]["title"])
}

func TestListTasks_InvalidStatus(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "GET", "/api/v1/tasks?status=finished", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Validation Error", resp["error"])
	details := resp["details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "query.status", details[0].(map[string]any)["field"])
}

func TestCreateTaskValidation(t *testing.T) {
	srv, _ := setupTestServer(t)

	tests := []struct {
		name  string
		body  any
		field string
	}{
		{"missing title", map[string]any{"description": "x"}, "body.title"},
		{"empty title", map[string]any{"title": ""}, "body.title"},
		{"long title", map[string]any{"title": strings.Repeat("a", 201)}, "body.title"},
		{"bad status", map[string]any{"title": "x", "status": "finished"}, "body.status"},
		{"no body", nil, "body"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, srv, "POST", "/api/v1/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			resp := decode[map[string]any](t, w)
			assert.Equal(t, "Validation Error", resp["error"])
			details := resp["details"].([]any)
			require.NotEmpty(t, details)
			assert.Equal(t, tt.field, details[0].(map[string]any)["field"])
		})
	}
}

func TestCreateTask_TitleLimitCountsCharacters(t *testing.T) {
	srv, _ := setupTestServer(t)
	w := doRequest(t, srv, "POST", "/api/v1/tasks", map[string]any{"title": strings.Repeat("ت", 200)})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestTaskNotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, method := range []string{"GET", "PUT", "PATCH", "DELETE"} {
		var body any
		if method == "PUT" || method == "PATCH" {
			body = map[string]any{"title": "x"}
		}
		w := doRequest(t, srv, method, "/api/v1/tasks/42", body)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "Task with id 42 not found", decode[map[string]string](t, w)["error"], method)
	}
}

func TestInvalidPathID(t *testing.T) {
	srv, _ := setupTestServer(t)
	for _, path := range []string{"/api/v1/tasks/abc", "/api/v1/tasks/0", "/api/v1/tasks/-3"} {
		w := doRequest(t, srv, "GET", path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		details := decode[map[string]any](t, w)["details"].([]any)
		assert.Equal(t, "path.task_id", details[0].(map[string]any)["field"])
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	task, err := store.CreateTask(db.CreateTaskInput{Title: "x"})
	require.NoError(t, err)

	w := doRequest(t, srv, "PATCH", "/api/v1/tasks/1/status", map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "done", decode[map[string]any](t, w)["status"])

	got, err := store.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, db.StatusDone, got.Status)

	w = doRequest(t, srv, "PATCH", "/api/v1/tasks/1/status", map[string]any{"status": "later"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, srv, "PATCH", "/api/v1/tasks/1/status", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv, store := setupTestServer(t)
	_, err := store.CreateTask(db.CreateTaskInput{Title: "a"})
	require.NoError(t, err)
	_, err = store.CreateTask(db.CreateTaskInput{Title: "b", Status: db.StatusDone})
	require.NoError(t, err)

	w := doRequest(t, srv, "GET", "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode[map[string]any](t, w)
	assert.Equal(t, float64(2), resp["total"])
	assert.Equal(t, map[string]any{"pending": float64(1), "in_progress": float64(0), "done": float64(1)}, resp["by_status"])
}

func TestAPITokenAuth(t *testing.T) {
	store := testutil.SetupTestDB(t)
	cfg := DefaultConfig()
	cfg.APIToken = "s3cret"
	srv := New(store, cfg, nil)

	w := doRequest(t, srv, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays open")

	w = doRequest(t, srv, "GET", "/api/v1/tasks", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("GET", "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest("GET", "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

package view_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/internal/view"
	"github.com/todomcp/todo/testutil"
)

func createTask(t *testing.T, d db.Store, title string, status db.Status) *db.Task {
	t.Helper()
	task, err := d.CreateTask(db.CreateTaskInput{Title: title, Status: status})
	require.NoError(t, err)
	return task
}

func TestSummarize(t *testing.T) {
	d := testutil.SetupTestDB(t)

	createTask(t, d, "one", db.StatusDone)
	createTask(t, d, "two", db.StatusPending)
	createTask(t, d, "three", db.StatusInProgress)
	last := createTask(t, d, "four", db.StatusDone)

	s, err := view.Summarize(d, view.SummaryOptions{Recent: 2})
	require.NoError(t, err)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Counts[db.StatusDone])
	assert.Equal(t, 50, s.Progress())
	require.Len(t, s.Recent, 2)
	assert.Equal(t, last.ID, s.Recent[0].ID)
}

func TestSummarize_Empty(t *testing.T) {
	d := testutil.SetupTestDB(t)

	s, err := view.Summarize(d, view.SummaryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.Progress())
	assert.Empty(t, s.Recent)

	out := view.RenderSummary(s)
	assert.Contains(t, out, "Tasks: 0 (0% done)")
	assert.Contains(t, out, "in_progress")
	assert.NotContains(t, out, "Most recent")
}

func TestRenderSummary_IncludesRecentTable(t *testing.T) {
	d := testutil.SetupTestDB(t)
	createTask(t, d, "write tests", db.StatusPending)

	s, err := view.Summarize(d, view.SummaryOptions{Recent: 5})
	require.NoError(t, err)

	out := view.RenderSummary(s)
	assert.Contains(t, out, "Most recent:")
	assert.Contains(t, out, "write tests")
	assert.Contains(t, out, "┌")
}

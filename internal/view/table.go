package view

import (
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/todomcp/todo/internal/db"
)

const (
	maxTitleCells   = 28
	createdAtLength = 19 // "2006-01-02T15:04:05"
)

// columns are the display widths of ID, Title, Status and Created At.
var columns = [4]int{4, 30, 12, 20}

var tableHeader = [4]string{"ID", "Title", "Status", "Created At"}

type row [4]string

// RenderTaskTable renders decoded task objects as a box-drawn table.
func RenderTaskTable(tasks []any) string {
	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		m, _ := t.(map[string]any)
		rows = append(rows, row{
			scalar(m["id"]),
			truncateTitle(scalar(m["title"])),
			scalar(m["status"]),
			truncateRunes(scalar(m["created_at"]), createdAtLength),
		})
	}
	return renderTable(rows)
}

// RenderTasks renders stored tasks with the same layout as RenderTaskTable.
func RenderTasks(tasks []*db.Task) string {
	rows := make([]row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, row{
			strconv.FormatInt(t.ID, 10),
			truncateTitle(t.Title),
			string(t.Status),
			t.CreatedAt.UTC().Format("2006-01-02T15:04:05"),
		})
	}
	return renderTable(rows)
}

func renderTable(rows []row) string {
	if len(rows) == 0 {
		return NoTasks
	}

	lines := make([]string, 0, len(rows)+4)
	lines = append(lines, border("┌", "┬", "┐"), formatRow(tableHeader), border("├", "┼", "┤"))
	for _, r := range rows {
		lines = append(lines, formatRow(r))
	}
	lines = append(lines, border("└", "┴", "┘"))
	return strings.Join(lines, "\n")
}

func border(left, mid, right string) string {
	parts := make([]string, len(columns))
	for i, w := range columns {
		parts[i] = strings.Repeat("─", w+2)
	}
	return left + strings.Join(parts, mid) + right
}

func formatRow(cells [4]string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = center(c, columns[i])
	}
	return "│ " + strings.Join(parts, " │ ") + " │"
}

// center pads s to width display cells, putting the odd cell on the right.
// Text wider than the column is left as is.
func center(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	pad := width - w
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

// truncateTitle cuts titles wider than maxTitleCells display cells and marks
// the cut with "..".
func truncateTitle(title string) string {
	if runewidth.StringWidth(title) > maxTitleCells {
		return runewidth.Truncate(title, maxTitleCells, "") + ".."
	}
	return title
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/internal/intent"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printTask(w io.Writer, t *db.Task) {
	fmt.Fprintf(w, "ID:          %d\n", t.ID)
	fmt.Fprintf(w, "Title:       %s\n", t.Title)
	fmt.Fprintf(w, "Status:      %s\n", t.Status)
	if t.Description != nil {
		fmt.Fprintf(w, "Description: %s\n", *t.Description)
	}
	fmt.Fprintf(w, "Created:     %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated:     %s\n", t.UpdatedAt.Format("2006-01-02 15:04:05"))
}

// resolveStatus accepts canonical statuses and any Persian or English alias.
func resolveStatus(term string) (db.Status, error) {
	if canonical, ok := intent.ResolveStatus(term); ok {
		return db.Status(canonical), nil
	}
	return db.ParseStatus(term)
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
)

var importMerge bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import tasks from JSON (reads stdin)",
	Long: `Import tasks written by 'todo export'. Tasks keep their ids and timestamps.
Existing tasks with the same id are replaced unless --merge is set, in which
case they are skipped.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Skip tasks whose id already exists")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}

	var imp exportData
	if err := json.Unmarshal(data, &imp); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	imported, skipped := 0, 0
	for _, t := range imp.Tasks {
		if t == nil || t.ID <= 0 || t.Title == "" {
			return fmt.Errorf("invalid task in import: missing id or title")
		}
		if importMerge {
			if _, err := d.GetTask(t.ID); err == nil {
				skipped++
				continue
			} else if !errors.Is(err, db.ErrNotFound) {
				return err
			}
		}

		now := time.Now().UTC()
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.UpdatedAt.IsZero() {
			t.UpdatedAt = t.CreatedAt
		}
		if t.Status == "" {
			t.Status = db.StatusPending
		}

		if err := d.ImportTask(t); err != nil {
			return fmt.Errorf("failed to import task %d: %w", t.ID, err)
		}
		imported++
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported: %d tasks, %d skipped\n", imported, skipped)
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/view"
)

var statsRecent int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts per status",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsRecent, "recent", 5, "Number of newest tasks to show")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	d, err := openStore()
	if err != nil {
		return err
	}
	defer d.Close()

	summary, err := view.Summarize(d, view.SummaryOptions{Recent: statsRecent})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return printJSON(out, map[string]any{
			"total":     summary.Total,
			"by_status": summary.Counts,
			"progress":  summary.Progress(),
		})
	default:
		fmt.Fprint(out, view.RenderSummary(summary))
	}
	return nil
}

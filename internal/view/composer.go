package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/todomcp/todo/internal/db"
)

type SummaryOptions struct {
	Recent int // number of newest tasks to include; 0 for none
}

// Summary is a point-in-time overview of the task table.
type Summary struct {
	Total      int
	Counts     map[db.Status]int
	Recent     []*db.Task
	RenderedAt time.Time
}

// Summarize collects per-status counts and the newest tasks.
func Summarize(s db.Store, opts SummaryOptions) (*Summary, error) {
	counts, err := s.CountByStatus()
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	result := &Summary{
		Counts:     counts,
		RenderedAt: time.Now().UTC(),
	}
	for _, n := range counts {
		result.Total += n
	}

	if opts.Recent > 0 {
		result.Recent, err = s.ListTasks(db.ListOptions{Limit: opts.Recent})
		if err != nil {
			return nil, fmt.Errorf("failed to list recent tasks: %w", err)
		}
	}

	return result, nil
}

// Progress is the share of tasks that are done, in percent.
func (s *Summary) Progress() int {
	if s.Total == 0 {
		return 0
	}
	return s.Counts[db.StatusDone] * 100 / s.Total
}

func RenderSummary(s *Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tasks: %d (%d%% done)\n\n", s.Total, s.Progress())
	for _, st := range db.Statuses {
		fmt.Fprintf(&b, "  %-12s %d\n", st, s.Counts[st])
	}

	if len(s.Recent) > 0 {
		b.WriteString("\nMost recent:\n")
		b.WriteString(RenderTasks(s.Recent))
		b.WriteString("\n")
	}
	return b.String()
}

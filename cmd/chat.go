package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/chat"
	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/internal/mcpclient"
	"github.com/todomcp/todo/internal/mcpserver"
	"github.com/todomcp/todo/internal/tasks"
	"golang.org/x/term"
)

var chatInProcess bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the task MCP server in Persian or English",
	Long: `Start 'todo mcp' as a subprocess, connect to it over MCP and read commands
such as "لیست تسک‌ها" or "create task with title Buy milk" from stdin.
With --in-process the server runs inside this process instead.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatInProcess, "in-process", false, "Run the MCP server in this process instead of a subprocess")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	styled := isTerminal(in) && isTerminal(out)

	heading := strings.Repeat("=", 60)
	title := "🚀 Todo MCP Client"
	if styled {
		title = lipgloss.NewStyle().Bold(true).Render(title)
	}
	fmt.Fprintln(out, heading)
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, heading)
	fmt.Fprintln(out, "\nConnecting to MCP Server...")

	c, closeStore, err := connectChat(ctx)
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to connect to MCP Server: %v\n", err)
		fmt.Fprintln(out, "\nMake sure the database settings (--db, --database-url or DATABASE_URL) are correct.")
		return err
	}
	defer closeStore()
	defer c.Close()

	fmt.Fprintf(out, "✅ Connected to MCP Server! (%s)\n\n", c.ServerName)

	session := chat.New(c, in, out, chat.WithStyle(styled))
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// connectChat starts the MCP server the chat talks to. The returned func
// closes anything opened in-process.
func connectChat(ctx context.Context) (*mcpclient.Client, func(), error) {
	noop := func() {}

	if chatInProcess {
		store, err := openStore()
		if err != nil {
			return nil, noop, err
		}
		s := mcpserver.New(tasks.NewExecutor(store, logger), version)
		c, err := mcpclient.StartInProcess(ctx, version, s)
		if err != nil {
			store.Close()
			return nil, noop, err
		}
		return c, func() { closeQuietly(store) }, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return nil, noop, fmt.Errorf("could not determine todo binary path: %w", err)
	}
	var env []string
	if url := storeURL(); url != "" {
		env = append(env, "DATABASE_URL="+url)
	}
	c, err := mcpclient.StartStdio(ctx, version, exe, env, "mcp", "--db", dbPath, "--log-level", "error")
	if err != nil {
		return nil, noop, err
	}
	return c, noop, nil
}

func closeQuietly(s db.Store) {
	if err := s.Close(); err != nil {
		logger.Warn("failed to close store", "err", err)
	}
}

func isTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
)

var (
	dbPath      string
	databaseURL string
	format      string
	logLevel    string

	logger = slog.New(slog.DiscardHandler)
)

var rootCmd = &cobra.Command{
	Use:   "todo",
	Short: "Task management over REST, MCP and a Persian/English chat console",
	Long: `A task service with a REST API, an MCP tool server and a chat console that
understands Persian and English commands.

Tasks are stored in SQLite (--db) or PostgreSQL (--database-url / DATABASE_URL).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(cmd.ErrOrStderr(), logLevel)
		if err != nil {
			return err
		}
		logger = l
		slog.SetDefault(l)
		return nil
	},
}

func init() {
	home, _ := os.UserHomeDir()
	defaultDB := filepath.Join(home, ".todo", "todo.db")
	if envDB := os.Getenv("TODO_DB"); envDB != "" {
		defaultDB = envDB
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "SQLite database file path")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&format, "format", "text", "Output format: text, json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// Execute loads .env from the working directory and runs the root command.
func Execute() error {
	// A missing .env is normal.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// storeURL returns the PostgreSQL URL to use, if any. The flag wins over
// DATABASE_URL.
func storeURL() string {
	if databaseURL != "" {
		return databaseURL
	}
	return os.Getenv("DATABASE_URL")
}

// openStore opens PostgreSQL when a database URL is configured and the
// SQLite file at --db otherwise.
func openStore() (db.Store, error) {
	if url := storeURL(); url != "" {
		s, err := db.OpenPostgres(url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		logger.Debug("opened store", "backend", "postgres")
		return s, nil
	}

	s, err := db.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("opened store", "backend", "sqlite", "path", dbPath)
	return s, nil
}

// parseID parses a task id argument.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", raw)
	}
	return id, nil
}

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/db"
	"github.com/todomcp/todo/internal/server"
)

var (
	servePort     int
	serveBind     string
	serveTLSCert  string
	serveTLSKey   string
	serveAPIToken string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the todo HTTP API server",
	Long: `Start the REST API for tasks under /api/v1.

Configuration can be provided via flags, environment variables
(TODO_SERVER_PORT, TODO_SERVER_BIND, TODO_SERVER_TLS_CERT, TODO_SERVER_TLS_KEY,
TODO_SERVER_API_TOKEN, DATABASE_URL), or a config file at ~/.todo/server.yaml.
Flags win over environment variables, which win over the file.`,
	RunE: runServe,
}

func init() {
	cfg := server.DefaultConfig()
	serveCmd.Flags().IntVar(&servePort, "port", cfg.Port, "Listen port")
	serveCmd.Flags().StringVar(&serveBind, "bind", cfg.Bind, "Bind address")
	serveCmd.Flags().StringVar(&serveTLSCert, "tls-cert", "", "TLS certificate file path")
	serveCmd.Flags().StringVar(&serveTLSKey, "tls-key", "", "TLS key file path")
	serveCmd.Flags().StringVar(&serveAPIToken, "api-token", "", "Require this bearer token on /api/ routes")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load config file + env vars as base, then override with flags
	home, _ := os.UserHomeDir()
	cfg, err := server.LoadConfig(appFs, home)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("bind") {
		cfg.Bind = serveBind
	}
	if cmd.Flags().Changed("tls-cert") {
		cfg.TLSCert = serveTLSCert
	}
	if cmd.Flags().Changed("tls-key") {
		cfg.TLSKey = serveTLSKey
	}
	if cmd.Flags().Changed("api-token") {
		cfg.APIToken = serveAPIToken
	}
	if databaseURL != "" {
		cfg.DBUrl = databaseURL
	}

	var store db.Store
	if cfg.DBUrl != "" {
		store, err = db.OpenPostgres(cfg.DBUrl)
		if err != nil {
			return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
	} else {
		store, err = openStore()
		if err != nil {
			return err
		}
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(store, cfg, logger)
	return srv.ListenAndServe(ctx)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/todomcp/todo/internal/server"
)

// appFs backs config file access; tests swap in a memory filesystem.
var appFs = afero.NewOsFs()

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the todo database and server config",
	Long: `Creates the database (running migrations) and writes a default
~/.todo/server.yaml if none exists.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("could not determine home directory: %w", err)
	}

	d, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	d.Close()

	out := cmd.OutOrStdout()
	if url := storeURL(); url != "" {
		fmt.Fprintln(out, "Database ready: PostgreSQL")
	} else {
		fmt.Fprintf(out, "Database ready: %s\n", dbPath)
	}

	wrote, err := server.WriteConfig(appFs, home, server.DefaultConfig())
	if err != nil {
		return err
	}
	if wrote {
		fmt.Fprintf(out, "Server config written: %s\n", server.ConfigPath(home))
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// mcpServerName is the key used under "mcpServers" in client configs.
const mcpServerName = "todo"

var (
	installMCP   bool
	installWrite string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Print or install the MCP client configuration",
	Long: `Without flags, runs 'todo init'. With --mcp, prints the MCP server entry
for Claude Desktop and other MCP clients. With --write <file>, merges the entry
into that client config file, keeping every other setting.`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installMCP, "mcp", false, "Output MCP server configuration")
	installCmd.Flags().StringVar(&installWrite, "write", "", "Merge the MCP server entry into this config file")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	if !installMCP && installWrite == "" {
		return runInit(cmd, args)
	}

	bin, err := findTodoBinary()
	if err != nil {
		return err
	}
	entry := mcpServerEntry(bin, dbPath, storeURL())

	if installWrite != "" {
		if err := writeMCPConfig(appFs, installWrite, entry); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server %q written to %s\n", mcpServerName, installWrite)
		return nil
	}
	return printMCPConfig(cmd, entry)
}

// mcpServerEntry builds the client config entry that launches 'todo mcp'.
func mcpServerEntry(bin, dbFile, url string) map[string]any {
	env := map[string]string{}
	if url != "" {
		env["DATABASE_URL"] = url
	} else {
		env["TODO_DB"] = dbFile
	}
	return map[string]any{
		"command": bin,
		"args":    []string{"mcp"},
		"env":     env,
	}
}

func printMCPConfig(cmd *cobra.Command, entry map[string]any) error {
	config := map[string]any{
		"mcpServers": map[string]any{mcpServerName: entry},
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Add this to your MCP client configuration:")
	fmt.Fprintln(out)
	fmt.Fprintln(out, string(data))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Claude Desktop configuration file locations:")
	fmt.Fprintln(out, "  macOS:   ~/Library/Application Support/Claude/claude_desktop_config.json")
	fmt.Fprintln(out, "  Linux:   ~/.config/Claude/claude_desktop_config.json")
	fmt.Fprintln(out, "  Windows: %APPDATA%/Claude/claude_desktop_config.json")
	return nil
}

// mergeMCPServer sets settings.mcpServers[name] = entry and reports whether
// anything changed. Other servers and settings are preserved.
func mergeMCPServer(settings map[string]any, name string, entry map[string]any) bool {
	servers, ok := settings["mcpServers"].(map[string]any)
	if !ok {
		servers = map[string]any{}
		settings["mcpServers"] = servers
	}

	if existing, ok := servers[name]; ok && sameJSON(existing, entry) {
		return false
	}
	servers[name] = entry
	return true
}

// sameJSON compares values by their JSON encoding so decoded and freshly
// built entries compare equal.
func sameJSON(a, b any) bool {
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	return errA == nil && errB == nil && string(ja) == string(jb)
}

// writeMCPConfig merges entry into the JSON config at path, creating the file
// if needed.
func writeMCPConfig(fsys afero.Fs, path string, entry map[string]any) error {
	settings := map[string]any{}
	data, err := afero.ReadFile(fsys, path)
	switch {
	case err == nil:
		if len(data) > 0 {
			if err := json.Unmarshal(data, &settings); err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if !mergeMCPServer(settings, mcpServerName, entry) {
		return nil
	}

	out, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	return afero.WriteFile(fsys, path, append(out, '\n'), 0o644)
}

// findTodoBinary returns the path to the todo binary, preferring PATH lookup.
func findTodoBinary() (string, error) {
	name := "todo"
	if runtime.GOOS == "windows" {
		name = "todo.exe"
	}
	for _, dir := range filepath.SplitList(os.Getenv("PATH")) {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("could not determine todo binary path: %w", err)
	}
	return filepath.EvalSymlinks(exe)
}

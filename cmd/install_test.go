package cmd

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMCPServerEntry(t *testing.T) {
	entry := mcpServerEntry("/usr/bin/todo", "/data/todo.db", "")
	assert.Equal(t, "/usr/bin/todo", entry["command"])
	assert.Equal(t, []string{"mcp"}, entry["args"])
	assert.Equal(t, map[string]string{"TODO_DB": "/data/todo.db"}, entry["env"])

	entry = mcpServerEntry("/usr/bin/todo", "/data/todo.db", "postgresql://db/todo")
	assert.Equal(t, map[string]string{"DATABASE_URL": "postgresql://db/todo"}, entry["env"])
}

func TestMergeMCPServer_IntoEmpty(t *testing.T) {
	settings := map[string]any{}
	changed := mergeMCPServer(settings, "todo", mcpServerEntry("todo", "x.db", ""))
	assert.True(t, changed)

	servers, ok := settings["mcpServers"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, servers, "todo")
}

func TestMergeMCPServer_PreservesExisting(t *testing.T) {
	settings := map[string]any{
		"theme": "dark",
		"mcpServers": map[string]any{
			"other": map[string]any{"command": "other-server"},
		},
	}

	mergeMCPServer(settings, "todo", mcpServerEntry("todo", "x.db", ""))

	servers := settings["mcpServers"].(map[string]any)
	assert.Len(t, servers, 2)
	assert.Contains(t, servers, "other")
	assert.Equal(t, "dark", settings["theme"])
}

func TestMergeMCPServer_Idempotent(t *testing.T) {
	settings := map[string]any{}
	entry := mcpServerEntry("todo", "x.db", "")
	assert.True(t, mergeMCPServer(settings, "todo", entry))
	assert.False(t, mergeMCPServer(settings, "todo", entry))
}

func TestMergeMCPServer_RoundtripThroughJSON(t *testing.T) {
	settings := map[string]any{}
	entry := mcpServerEntry("todo", "x.db", "")
	mergeMCPServer(settings, "todo", entry)

	data, err := json.Marshal(settings)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, mergeMCPServer(decoded, "todo", entry), "decoded entry should compare equal")
	assert.True(t, mergeMCPServer(decoded, "todo", mcpServerEntry("todo", "y.db", "")))
}

func TestWriteMCPConfig(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/home/u/.config/Claude/claude_desktop_config.json"
	require.NoError(t, afero.WriteFile(fsys, path, []byte(`{"mcpServers":{"other":{"command":"x"}},"keep":1}`), 0o644))

	require.NoError(t, writeMCPConfig(fsys, path, mcpServerEntry("/bin/todo", "t.db", "")))

	data, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	var settings map[string]any
	require.NoError(t, json.Unmarshal(data, &settings))

	assert.Equal(t, float64(1), settings["keep"])
	servers := settings["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "other")
	assert.Equal(t, "/bin/todo", servers["todo"].(map[string]any)["command"])
}

func TestWriteMCPConfig_CreatesFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	path := "/new/dir/config.json"

	require.NoError(t, writeMCPConfig(fsys, path, mcpServerEntry("/bin/todo", "t.db", "")))

	exists, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWriteMCPConfig_InvalidJSON(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/c.json", []byte("{nope"), 0o644))
	assert.Error(t, writeMCPConfig(fsys, "/c.json", mcpServerEntry("todo", "t.db", "")))
}

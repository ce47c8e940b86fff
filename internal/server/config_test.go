package server

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearServerEnv(t *testing.T) {
	for _, k := range []string{
		"TODO_SERVER_PORT", "TODO_SERVER_BIND", "TODO_SERVER_TLS_CERT",
		"TODO_SERVER_TLS_KEY", "TODO_SERVER_API_TOKEN", "DATABASE_URL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearServerEnv(t)
	cfg, err := LoadConfig(afero.NewMemMapFs(), "/home/u")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.False(t, cfg.HasTLS())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearServerEnv(t)
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/home/u/.todo/server.yaml", []byte(`
port: 9090
bind: 127.0.0.1
api_token: from-file
tls_cert: /etc/cert.pem
tls_key: /etc/key.pem
`), 0o600))

	cfg, err := LoadConfig(fsys, "/home/u")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr())
	assert.Equal(t, "from-file", cfg.APIToken)
	assert.True(t, cfg.HasTLS())

	t.Setenv("TODO_SERVER_PORT", "7000")
	t.Setenv("TODO_SERVER_API_TOKEN", "from-env")
	t.Setenv("DATABASE_URL", "postgresql://localhost/todo")

	cfg, err = LoadConfig(fsys, "/home/u")
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, "from-env", cfg.APIToken)
	assert.Equal(t, "postgresql://localhost/todo", cfg.DBUrl)
}

func TestLoadConfig_BadPortEnvIgnored(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("TODO_SERVER_PORT", "eighty")
	cfg, err := LoadConfig(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	clearServerEnv(t)
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, ConfigPath("/h"), []byte("port: [1, 2"), 0o600))

	_, err := LoadConfig(fsys, "/h")
	assert.Error(t, err)
}

func TestWriteConfig(t *testing.T) {
	clearServerEnv(t)
	fsys := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Port = 8123

	wrote, err := WriteConfig(fsys, "/h", cfg)
	require.NoError(t, err)
	assert.True(t, wrote)

	loaded, err := LoadConfig(fsys, "/h")
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.Port)

	cfg.Port = 1
	wrote, err = WriteConfig(fsys, "/h", cfg)
	require.NoError(t, err)
	assert.False(t, wrote, "existing file is kept")

	loaded, err = LoadConfig(fsys, "/h")
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.Port)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvOnly(t *testing.T) {
	t.Setenv("LINE_CHANNEL_TOKEN", "token-123")
	t.Setenv("LINE_CHANNEL_SECRET", "secret-456")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "token-123", cfg.Line.ChannelToken)
	assert.Equal(t, "secret-456", cfg.Line.ChannelSecret)
	assert.Equal(t, DefaultHTTPAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultStorageRoot, cfg.Storage.Root)
	assert.False(t, cfg.Mirrored())
}

func TestLoadMissingCredentialsFails(t *testing.T) {
	t.Setenv("LINE_CHANNEL_TOKEN", "")
	t.Setenv("LINE_CHANNEL_SECRET", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadFromFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	contents := `
[line]
channel_token = "file-token"
channel_secret = "file-secret"

[storage]
root = "/var/photos"
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	t.Setenv("LINE_CHANNEL_TOKEN", "env-token")
	t.Setenv("LINE_CHANNEL_SECRET", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	// Environment wins over the file for secrets.
	assert.Equal(t, "env-token", cfg.Line.ChannelToken)
	assert.Equal(t, "file-secret", cfg.Line.ChannelSecret)
	assert.Equal(t, "/var/photos", cfg.Storage.Root)
}

func TestLoadMirroredRequiresAPIKey(t *testing.T) {
	t.Setenv("LINE_CHANNEL_TOKEN", "token")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("GCS_BUCKET", "my-bucket")
	t.Setenv("API_KEY", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)

	t.Setenv("API_KEY", "k")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.True(t, cfg.Mirrored())
}

func TestLoadPortOverride(t *testing.T) {
	t.Setenv("LINE_CHANNEL_TOKEN", "token")
	t.Setenv("LINE_CHANNEL_SECRET", "secret")
	t.Setenv("PORT", "9000")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

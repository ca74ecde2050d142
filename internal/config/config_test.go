package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "blogbox.toml")
	err := os.WriteFile(file, []byte(`
bind = ":8080"
database = "/var/lib/blogbox/blog.db"
post_cache_ttl = "30s"

[login]
per_minute = 3
burst = 1
`), 0600)
	require.NoError(t, err)

	cfg, err := Load(file)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Bind)
	require.Equal(t, "/var/lib/blogbox/blog.db", cfg.Database)
	require.Equal(t, 30*time.Second, cfg.PostCacheTTL.Duration)
	require.Equal(t, LoginThrottle{PerMinute: 3, Burst: 1}, cfg.Login)
	// untouched keys keep their defaults
	require.Equal(t, Default().UploadDir, cfg.UploadDir)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	file := filepath.Join(t.TempDir(), "blogbox.toml")
	require.NoError(t, os.WriteFile(file, []byte(`jwt_secret = "nope"`), 0600))
	_, err := Load(file)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "chatty"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MaxUploadBytes = 0
	require.Error(t, cfg.Validate())
}

func TestLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	if cfg.Level() != zerolog.DebugLevel {
		t.Fatalf("unexpected level %v", cfg.Level())
	}
	cfg.LogLevel = "nonsense"
	if cfg.Level() != zerolog.InfoLevel {
		t.Fatalf("invalid levels should fall back to info, got %v", cfg.Level())
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Minimal(t *testing.T) {
	path := writeConfig(t, `
app:
  name: washpoint
  environment: test
database:
  path: /tmp/washpoint-test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "washpoint", cfg.App.Name)
	assert.Equal(t, "/tmp/washpoint-test.db", cfg.Database.Path)

	// Defaults
	assert.Equal(t, 30, cfg.Booking.MaxAdvanceDays)
	assert.Equal(t, time.Second, cfg.Tracker.TickInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Tracker.AdvanceDelay)
	assert.Equal(t, 24*time.Hour, cfg.Tracker.SessionTTL)
	assert.Equal(t, "24h", cfg.Backup.Schedule)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("WASHPOINT_DB_PATH", "/tmp/from-env.db")

	path := writeConfig(t, `
database:
  path: ${WASHPOINT_DB_PATH}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
}

func TestLoad_MissingDatabasePath(t *testing.T) {
	path := writeConfig(t, `
app:
  name: washpoint
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path")
}

func TestValidate_TelegramRequiresToken(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "/tmp/x.db"},
		Telegram: TelegramConfig{Enabled: true},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram bot token")

	cfg.Telegram.BotToken = "123:abc"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "admin chat id")

	cfg.Telegram.AdminChatID = 42
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RedisAndExports(t *testing.T) {
	cfg := &Config{
		Database: DatabaseConfig{Path: "/tmp/x.db"},
		Redis:    RedisConfig{Enabled: true},
	}
	cfg.applyDefaults()
	require.Error(t, cfg.Validate())

	cfg.Redis.Address = "localhost:6379"
	require.NoError(t, cfg.Validate())

	cfg.Exports.Enabled = true
	require.Error(t, cfg.Validate())
	cfg.Exports.Path = "/tmp/exports"
	require.NoError(t, cfg.Validate())
}

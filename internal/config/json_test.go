package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"bot_token":     "123:abc",
		"storage_kind":  "sqlite",
		"storage_path":  "debts.db",
		"poll_timeout":  "45s",
		"restart_delay": "3s",
		"health_addr":   ":9090",
		"locale":        "en",
		"s3_bucket":     "bucket",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "123:abc", cfg.BotToken)
		assert.Equal(t, StorageSQLite, cfg.StorageKind)
		assert.Equal(t, "debts.db", cfg.StoragePath)
		assert.Equal(t, 45*time.Second, cfg.PollTimeout)
		assert.Equal(t, 3*time.Second, cfg.RestartDelay)
		assert.Equal(t, ":9090", cfg.HealthAddr)
		assert.Equal(t, "en", cfg.Locale)
		assert.Equal(t, "bucket", cfg.S3Bucket)
	})

	t.Run("short flag", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "123:abc", cfg.BotToken)
	})

	t.Run("no config flag leaves values untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{StoragePath: "keep.json", PollTimeout: time.Minute}
		parseJson(cfg)

		assert.Equal(t, "keep.json", cfg.StoragePath)
		assert.Equal(t, time.Minute, cfg.PollTimeout)
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, map[string]any{"log_level": "debug"})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "debts.json", cfg.StoragePath)
		assert.Equal(t, 10*time.Second, cfg.RestartDelay)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid json panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}

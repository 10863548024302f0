package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":3001", cfg.Server.Address())
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins())
	assert.Equal(t, 3, cfg.Game.MinPlayers)
	assert.Equal(t, 8, cfg.Game.MaxPlayers)
	assert.Equal(t, 5*time.Minute, cfg.Game.ReapInterval)
	assert.Equal(t, "builtin", cfg.Words.Source)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  http_address: ":9000"
  client_url: "http://a.test, http://b.test"
game:
  reap_interval: 30s
words:
  source: gorm
database:
  postgres:
    host: db
    port: 6543
    user: game
    password: secret
    dbname: words
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("NEONWHISPER_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Address())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins())
	assert.Equal(t, 30*time.Second, cfg.Game.ReapInterval)
	assert.Equal(t, "gorm", cfg.Words.Source)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "host=db port=6543 user=game password=secret dbname=words sslmode=disable", cfg.Database.Postgres.DSN())
}

func TestLoadConfig_PortAndClientURLEnv(t *testing.T) {
	t.Setenv("PORT", "4100")
	t.Setenv("CLIENT_URL", "https://play.example")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":4100", cfg.Server.Address())
	assert.Equal(t, []string{"https://play.example"}, cfg.Server.AllowedOrigins())
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"max below min", func(c *Config) { c.Game.MaxPlayers = 2 }},
		{"short code", func(c *Config) { c.Game.CodeLength = 2 }},
		{"zero reap", func(c *Config) { c.Game.ReapInterval = 0 }},
		{"zero rate", func(c *Config) { c.Game.RateLimit = 0 }},
		{"zero send buffer", func(c *Config) { c.Server.SendBuffer = 0 }},
		{"unknown source", func(c *Config) { c.Words.Source = "redis" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PUNCHCLOCK_AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "300-M", cfg.Server.RateLimit)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/punchclock.db", cfg.Database.DSN)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	assert.False(t, cfg.GitHubEnabled())

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, cal.WeekStart)
	assert.Equal(t, time.UTC, cal.Location)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PUNCHCLOCK_AUTH_JWT_SECRET", testSecret)
	t.Setenv("PUNCHCLOCK_SERVER_PORT", "9090")
	t.Setenv("PUNCHCLOCK_SERVER_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("PUNCHCLOCK_DATABASE_DRIVER", "postgres")
	t.Setenv("PUNCHCLOCK_DATABASE_DSN", "postgres://localhost/punchclock")
	t.Setenv("PUNCHCLOCK_REPORTS_WEEK_START", "monday")
	t.Setenv("PUNCHCLOCK_REPORTS_TIMEZONE", "Europe/Berlin")
	t.Setenv("PUNCHCLOCK_LOG_LEVEL", "debug")
	t.Setenv("PUNCHCLOCK_AUTH_TOKEN_TTL", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())

	cal, err := cfg.Calendar()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, cal.WeekStart)
	assert.Equal(t, "Europe/Berlin", cal.Location.String())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "punchclock.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 7070
  allowed_origins:
    - https://app.example
auth:
  jwt_secret: from-the-config-file
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PUNCHCLOCK_SERVER_PORT", "7171") // env wins over file

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7171, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "from-the-config-file", cfg.Auth.JWTSecret)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()

	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
			Auth:     AuthConfig{JWTSecret: testSecret, TokenTTL: time.Hour},
			Reports:  ReportsConfig{Timezone: "UTC", WeekStart: "sunday"},
			Log:      LogConfig{Level: "info", Format: "text"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"bad timezone", func(c *Config) { c.Reports.Timezone = "Mars/Olympus" }},
		{"bad week start", func(c *Config) { c.Reports.WeekStart = "someday" }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRead_SkipsValidation(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PUNCHCLOCK_AUTH_JWT_SECRET", "")
	t.Setenv("PUNCHCLOCK_DATABASE_DSN", "/tmp/other.db")

	_, err := Load()
	assert.Error(t, err, "Load insists on a secret")

	cfg, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.db", cfg.Database.DSN)
}

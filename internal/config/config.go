// Package config loads runtime settings with viper.
//
// Precedence, lowest to highest:
//
//	built-in defaults → config file (CONFIG_FILE) → PUNCHCLOCK_* environment
//
// Keys are dotted ("database.dsn"); the matching environment variable
// upper-cases the key and swaps dots for underscores
// (PUNCHCLOCK_DATABASE_DSN).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sakif/punchclock/internal/hours"
)

const envPrefix = "PUNCHCLOCK"

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Reports  ReportsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           int
	AllowedOrigins []string
	RateLimit      string // ulule/limiter format, e.g. "300-M"; empty disables
	Development    bool
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

type ReportsConfig struct {
	Timezone  string
	WeekStart string
}

type LogConfig struct {
	Level  string
	Format string // "text" or "json"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.rate_limit", "300-M")
	v.SetDefault("server.development", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/punchclock.db")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.github_client_id", "")
	v.SetDefault("auth.github_client_secret", "")
	v.SetDefault("auth.github_callback_url", "http://localhost:8080/auth/github/callback")

	v.SetDefault("reports.timezone", "UTC")
	v.SetDefault("reports.week_start", "sunday")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration and validates it.
func Load() (*Config, error) {
	cfg, err := Read()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads defaults, CONFIG_FILE and the environment without validating.
// Tools that only need the database settings use it directly.
func Read() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", p, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("server.port"),
			AllowedOrigins: stringList(v.GetStringSlice("server.allowed_origins")),
			RateLimit:      strings.TrimSpace(v.GetString("server.rate_limit")),
			Development:    v.GetBool("server.development"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			DSN:    v.GetString("database.dsn"),
		},
		Auth: AuthConfig{
			JWTSecret:          v.GetString("auth.jwt_secret"),
			TokenTTL:           v.GetDuration("auth.token_ttl"),
			GitHubClientID:     v.GetString("auth.github_client_id"),
			GitHubClientSecret: v.GetString("auth.github_client_secret"),
			GitHubCallbackURL:  v.GetString("auth.github_callback_url"),
		},
		Reports: ReportsConfig{
			Timezone:  v.GetString("reports.timezone"),
			WeekStart: v.GetString("reports.week_start"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}
	return cfg, nil
}

// stringList accepts both a real list (config file) and a single
// comma-separated value (environment variable).
func stringList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		errs = append(errs, fmt.Errorf("database.driver %q must be sqlite or postgres", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("auth.jwt_secret must be at least 16 characters"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl %s must be positive", c.Auth.TokenTTL))
	}
	if _, err := time.LoadLocation(c.Reports.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("reports.timezone: %w", err))
	}
	if _, err := hours.ParseWeekday(c.Reports.WeekStart); err != nil {
		errs = append(errs, fmt.Errorf("reports.week_start: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format %q must be text or json", c.Log.Format))
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Calendar builds the report calendar from reports.timezone and
// reports.week_start.
func (c *Config) Calendar() (hours.Calendar, error) {
	loc, err := time.LoadLocation(c.Reports.Timezone)
	if err != nil {
		return hours.Calendar{}, fmt.Errorf("config: %w", err)
	}
	day, err := hours.ParseWeekday(c.Reports.WeekStart)
	if err != nil {
		return hours.Calendar{}, fmt.Errorf("config: %w", err)
	}
	return hours.NewCalendar(loc, day), nil
}

// SlogLevel parses log.level, falling back to Info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// GitHubEnabled reports whether the OAuth client is configured.
func (c *Config) GitHubEnabled() bool {
	return c.Auth.GitHubClientID != "" && c.Auth.GitHubClientSecret != ""
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions. Secrets (the Discord token) never live in the YAML file.

// DiscordConfig describes the chat transport.
type DiscordConfig struct {
	// TokenEnv names the environment variable holding the bot token.
	TokenEnv string `yaml:"token_env" json:"token_env" validate:"required"`
}

// DigestConfig controls the cron-driven daily post of today's plan.
type DigestConfig struct {
	// Cron is a standard 5-field cron expression (e.g. "0 7 * * *").
	// Empty disables the digest job.
	Cron string `yaml:"cron" json:"cron" validate:"omitempty,cron"`

	// ChannelID is the channel the digest is posted to. Empty means the job
	// only runs AutoStart.
	ChannelID string `yaml:"channel_id" json:"channel_id"`

	// AutoStart creates today's plan when it does not exist yet.
	AutoStart bool `yaml:"auto_start" json:"auto_start"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataFile is the JSON file holding the whole schedule.
	DataFile string `yaml:"data_file" json:"data_file" validate:"required"`

	// Prefix is the command prefix recognized in chat messages.
	Prefix string `yaml:"prefix" json:"prefix" validate:"required,max=8"`

	// Timezone is the IANA timezone that decides what "today" is (e.g. "Asia/Taipei").
	Timezone string `yaml:"timezone" json:"timezone" validate:"required,timezone"`

	// WeekStart controls which weekday is treated as the first day of the week
	// in calendar views. Supported values:
	//   - "monday" (default)
	//   - "sunday"
	WeekStart string `yaml:"week_start" json:"week_start" validate:"oneof=monday sunday"`

	// Listen is the HTTP listen address for the read-only API. Empty disables it.
	Listen string `yaml:"listen" json:"listen" validate:"omitempty,hostname_port"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error"`

	Discord DiscordConfig `yaml:"discord" json:"discord"`
	Digest  DigestConfig  `yaml:"digest" json:"digest"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataFile:  "daily_plans.json",
		Prefix:    "!",
		Timezone:  "Asia/Taipei",
		WeekStart: "monday",
		Listen:    "",
		LogLevel:  "info",
		Discord: DiscordConfig{
			TokenEnv: "DISCORD_TOKEN",
		},
		Digest: DigestConfig{
			Cron:      "",
			ChannelID: "",
			AutoStart: false,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	c.DataFile = strings.TrimSpace(c.DataFile)
	if c.DataFile == "" {
		c.DataFile = def.DataFile
	}
	c.Prefix = strings.TrimSpace(c.Prefix)
	if c.Prefix == "" {
		c.Prefix = def.Prefix
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}

	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		// Unknown value; fall back to monday to avoid surprising layouts.
		c.WeekStart = def.WeekStart
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Discord.TokenEnv == "" {
		c.Discord.TokenEnv = def.Discord.TokenEnv
	}
	c.Digest.Cron = strings.TrimSpace(c.Digest.Cron)
}

// Validate checks the normalized config.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("cron", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FirstWeekday maps WeekStart onto time.Weekday.
func (c *Config) FirstWeekday() time.Weekday {
	if c.WeekStart == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// DataPath resolves DataFile relative to the directory of the config file.
func (c *Config) DataPath(configPath string) string {
	if filepath.IsAbs(c.DataFile) || configPath == "" {
		return c.DataFile
	}
	return filepath.Join(filepath.Dir(configPath), c.DataFile)
}

// Token reads the Discord token from the environment.
func (c *Config) Token() (string, error) {
	token := strings.TrimSpace(os.Getenv(c.Discord.TokenEnv))
	if token == "" {
		return "", fmt.Errorf("environment variable %s is empty", c.Discord.TokenEnv)
	}
	return token, nil
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment. Variables
// already set are kept. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults and validate
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".plancal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Package config loads the schedule server configuration.
//
// Values are layered, later layers winning:
//   - Default()
//   - the YAML file given by --config (optional)
//   - a .env file (optional) and the process environment (SCHEDULEHQ_*)
//   - command-line flags, applied by cmd/server
//
// The PTO section only seeds the settings row of a new database. Once the
// row exists, managers change the rules through the API and the file is
// ignored for them.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/schedulehq/schedule-engine/timeoff"
)

// Environment variables read by ApplyEnv.
const (
	EnvDatabase  = "SCHEDULEHQ_DB"
	EnvAddr      = "SCHEDULEHQ_ADDR"
	EnvLogLevel  = "SCHEDULEHQ_LOG_LEVEL"
	EnvLogFormat = "SCHEDULEHQ_LOG_FORMAT"
	EnvBackup    = "SCHEDULEHQ_BACKUP"
)

// Config is the server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	PTO      PTOConfig      `yaml:"pto"`
	Sync     SyncConfig     `yaml:"sync"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	// Path is the SQLite file. ":memory:" keeps everything in memory.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// PTOConfig seeds the settings row on first run. CloseCheckInterval is how
// often the server looks for a finished trimester to close; zero disables it.
type PTOConfig struct {
	HoursPerTrimester  int           `yaml:"hours_per_trimester"`
	HoursPerRequest    int           `yaml:"hours_per_request"`
	MaxCarryoverHours  int           `yaml:"max_carryover_hours"`
	BlockOverlaps      bool          `yaml:"block_overlaps"`
	CloseCheckInterval time.Duration `yaml:"close_check_interval"`
}

// SyncConfig configures cloud backup.
type SyncConfig struct {
	// BackupPath is the local mirror file. Empty disables the sync routes.
	BackupPath string        `yaml:"backup_path"`
	BatchSize  int           `yaml:"batch_size"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when nothing else is given.
func Default() *Config {
	rules := timeoff.DefaultRules()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Database: DatabaseConfig{Path: "./data/schedule.db"},
		Log:      LogConfig{Level: "info", Format: "text"},
		PTO: PTOConfig{
			HoursPerTrimester:  rules.PTOHoursPerTrimester,
			HoursPerRequest:    rules.PTOHoursPerRequest,
			MaxCarryoverHours:  rules.MaxCarryoverHours,
			BlockOverlaps:      rules.BlockOverlaps,
			CloseCheckInterval: time.Hour,
		},
		Sync: SyncConfig{
			BackupPath: "./data/backup.cbor.zst",
			BatchSize:  400,
			Timeout:    10 * time.Second,
		},
	}
}

// Load returns Default() overlaid with the YAML file at path, when path is
// not empty, and then with the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is not
// an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// ApplyEnv overrides fields from SCHEDULEHQ_* variables.
func (c *Config) ApplyEnv() {
	c.Database.Path = getEnv(EnvDatabase, c.Database.Path)
	c.Server.Addr = getEnv(EnvAddr, c.Server.Addr)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
	c.Log.Format = getEnv(EnvLogFormat, c.Log.Format)
	c.Sync.BackupPath = getEnv(EnvBackup, c.Sync.BackupPath)
	c.Sync.BatchSize = getEnvAsInt("SCHEDULEHQ_SYNC_BATCH", c.Sync.BatchSize)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr is required"))
	}
	if c.Database.Path == "" {
		errs = append(errs, fmt.Errorf("database.path is required"))
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if err := c.Rules().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pto: %w", err))
	}
	if c.PTO.CloseCheckInterval < 0 {
		errs = append(errs, fmt.Errorf("pto.close_check_interval must not be negative"))
	}
	if c.Sync.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("sync.batch_size must be positive"))
	}
	if c.Sync.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sync.timeout must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Rules converts the PTO section into the rules seeded on first run.
func (c *Config) Rules() timeoff.Rules {
	return timeoff.Rules{
		PTOHoursPerTrimester: c.PTO.HoursPerTrimester,
		PTOHoursPerRequest:   c.PTO.HoursPerRequest,
		MaxCarryoverHours:    c.PTO.MaxCarryoverHours,
		BlockOverlaps:        c.PTO.BlockOverlaps,
	}
}

// NewLogger builds the logrus logger described by the Log section, writing
// to out.
func (c *Config) NewLogger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(level)
	if strings.EqualFold(c.Log.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

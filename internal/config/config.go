// Package config loads runtime settings from an optional YAML file, a .env file
// and REPOLAB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"repo-rate-lab/internal/domain"
)

// EnvPrefix is the prefix of all environment variables read by Load.
const EnvPrefix = "REPOLAB"

// DefaultConfigFile is read when REPOLAB_CONFIG_FILE is unset.
const DefaultConfigFile = "repolab.yaml"

// Config represents the complete application configuration.
type Config struct {
	OutputDir       string    `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	DataDir         string    `yaml:"data_dir" envconfig:"DATA_DIR"`
	InputFile       string    `yaml:"input_file" envconfig:"INPUT_FILE"` // relative to DataDir unless absolute
	StartDate       string    `yaml:"start_date" envconfig:"START_DATE"`
	PostgresDSN     string    `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	ClickhouseDSN   string    `yaml:"clickhouse_dsn" envconfig:"CLICKHOUSE_DSN"`
	MetricsTextfile string    `yaml:"metrics_textfile" envconfig:"METRICS_TEXTFILE"`
	Logging         LogConfig `yaml:"logging" envconfig:"LOG"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level         string `yaml:"level" envconfig:"LEVEL"`
	Format        string `yaml:"format" envconfig:"FORMAT"` // json, pretty
	FileEnabled   bool   `yaml:"file_enabled" envconfig:"FILE_ENABLED"`
	Dir           string `yaml:"dir" envconfig:"DIR"`
	RotationSize  int    `yaml:"rotation_size_mb" envconfig:"ROTATION_SIZE_MB"`
	RetentionDays int    `yaml:"retention_days" envconfig:"RETENTION_DAYS"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		OutputDir: "_output",
		DataDir:   "_data",
		InputFile: "repo_public.csv",
		StartDate: "2012-01-01",
		Logging: LogConfig{
			Level:         "info",
			Format:        "pretty",
			Dir:           "logs",
			RotationSize:  50,
			RetentionDays: 14,
		},
	}
}

// Load builds the configuration. Precedence, lowest first: Defaults, the YAML
// file, .env, process environment. A missing .env or YAML file is not an error.
func Load() (*Config, error) {
	// Process environment wins over .env: godotenv.Load never overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	path := os.Getenv(EnvPrefix + "_CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if err := loadFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFile overlays the keys present in a YAML file onto cfg.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks required fields and formats.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output dir must be set")
	}
	if _, err := c.Start(); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "json", "pretty":
	default:
		return fmt.Errorf("invalid log format %q (want json or pretty)", c.Logging.Format)
	}
	return nil
}

// Start parses StartDate. An empty StartDate yields the zero time (no window).
func (c *Config) Start() (time.Time, error) {
	if c.StartDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q: %w", c.StartDate, err)
	}
	return t, nil
}

// InputPath returns the resolved input CSV path.
func (c *Config) InputPath() string {
	if filepath.IsAbs(c.InputFile) || c.DataDir == "" {
		return c.InputFile
	}
	return filepath.Join(c.DataDir, c.InputFile)
}

// Usage writes the list of supported environment variables to w.
func Usage(w io.Writer) error {
	cfg := Defaults()
	return envconfig.Usagef(EnvPrefix, &cfg, w, envconfig.DefaultTableFormat)
}

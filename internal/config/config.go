// Package config handles boardstats configuration parsing and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default configuration file name.
const FileName = "boardstats.yaml"

// Config represents the boardstats.yaml configuration file.
type Config struct {
	Version      string         `yaml:"version"`
	Database     DatabaseConfig `yaml:"database"`
	DefaultRange RangeConfig    `yaml:"default_range"`
	Ranges       []RangeConfig  `yaml:"ranges"`
	Export       ExportConfig   `yaml:"export"`
	Chart        ChartConfig    `yaml:"chart"`
}

// DatabaseConfig locates the reporting database. Credentials are never stored
// here; they come from the DB_USER and DB_PASS environment variables.
type DatabaseConfig struct {
	Driver         string `yaml:"driver"` // postgres, sqlite
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name"`
	SSLMode        string `yaml:"sslmode"`
	DSN            string `yaml:"dsn,omitempty"` // sqlite file path, or a full postgres DSN
	ConnectTimeout string `yaml:"connect_timeout"`
}

// RangeConfig is a named [start, end) window with YYYY-MM-DD bounds.
type RangeConfig struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ExportConfig controls where CSV and workbook exports go.
type ExportConfig struct {
	Dir       string `yaml:"dir"`
	BucketCap int    `yaml:"bucket_cap"`
	Workbook  bool   `yaml:"workbook"`
}

// ChartConfig sets the default image format and size.
type ChartConfig struct {
	Format string `yaml:"format"` // png, svg
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Database: DatabaseConfig{
			Driver:         "postgres",
			Host:           "localhost",
			Port:           65433,
			Name:           "rutherford",
			SSLMode:        "disable",
			ConnectTimeout: "10s",
		},
		DefaultRange: RangeConfig{
			Name:  "September 2023",
			Start: "2023-09-01",
			End:   "2023-10-01",
		},
		Ranges: []RangeConfig{
			{Name: "Last Academic Year", Start: "2022-09-01", End: "2023-09-01"},
			{Name: "Last two years", Start: "2021-12-19", End: "2023-12-19"},
			{Name: "Last two academic years", Start: "2021-09-01", End: "2023-09-01"},
			{Name: "All Time", Start: "2000-01-01", End: "2023-12-30"},
		},
		Export: ExportConfig{
			Dir:       "out",
			BucketCap: 4,
		},
		Chart: ChartConfig{
			Format: "png",
			Width:  1024,
			Height: 768,
		},
	}
}

// Load reads and parses the boardstats.yaml config file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.DSN == "" {
			if c.Database.Host == "" {
				return fmt.Errorf("database host is required for postgres")
			}
			if c.Database.Port < 1 || c.Database.Port > 65535 {
				return fmt.Errorf("invalid database port: %d", c.Database.Port)
			}
		}
	case "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("database dsn is required for sqlite")
		}
	default:
		return fmt.Errorf("invalid driver: %s (must be postgres or sqlite)", c.Database.Driver)
	}

	if _, err := c.ConnectTimeout(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Ranges))
	for _, r := range c.Ranges {
		if r.Name == "" {
			return fmt.Errorf("range %s..%s has no name", r.Start, r.End)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate range name: %s", r.Name)
		}
		seen[r.Name] = true
	}

	if c.Export.BucketCap < 1 {
		return fmt.Errorf("bucket_cap must be at least 1")
	}

	validFormats := map[string]bool{"png": true, "svg": true}
	if !validFormats[c.Chart.Format] {
		return fmt.Errorf("invalid chart format: %s (must be png or svg)", c.Chart.Format)
	}
	if c.Chart.Width < 1 || c.Chart.Height < 1 {
		return fmt.Errorf("chart width and height must be positive")
	}

	return nil
}

// ConnectTimeout parses the database connect timeout. An empty value means no
// timeout.
func (c *Config) ConnectTimeout() (time.Duration, error) {
	if c.Database.ConnectTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Database.ConnectTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid connect_timeout %q: %w", c.Database.ConnectTimeout, err)
	}
	return d, nil
}

// FindRange returns the configured range with the given name.
func (c *Config) FindRange(name string) (RangeConfig, bool) {
	if c.DefaultRange.Name == name {
		return c.DefaultRange, true
	}
	for _, r := range c.Ranges {
		if r.Name == name {
			return r, true
		}
	}
	return RangeConfig{}, false
}

// FindConfigFile searches for boardstats.yaml in current and parent directories.
func FindConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for dir := cwd; ; dir = filepath.Dir(dir) {
		configPath := filepath.Join(dir, FileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		if dir == filepath.Dir(dir) {
			break
		}
	}

	return "", fmt.Errorf("%s not found in %s or parent directories", FileName, cwd)
}

// Package config loads and saves finlens.yaml.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "finlens.yaml"

// Config represents the top-level finlens.yaml configuration.
type Config struct {
	DART     DARTConfig     `yaml:"dart"`
	Taxonomy TaxonomyConfig `yaml:"taxonomy"`
	CorpCode CorpCodeConfig `yaml:"corpcode"`
	Advisor  AdvisorConfig  `yaml:"advisor"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DARTConfig controls the disclosure API client.
type DARTConfig struct {
	APIKey         string        `yaml:"api_key,omitempty"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	FallbackYears  int           `yaml:"fallback_years"`
	LatestYearScan int           `yaml:"latest_year_scan"`
}

// TaxonomyConfig points at an optional taxonomy CSV replacing the built-in one.
type TaxonomyConfig struct {
	Path string `yaml:"path,omitempty"`
}

// CorpCodeConfig locates the company-code database.
type CorpCodeConfig struct {
	DBPath string `yaml:"db_path"`
}

// AdvisorConfig controls AI narrative generation. An empty API key disables
// it; an empty history path disables the analysis history.
type AdvisorConfig struct {
	Model       string `yaml:"model"`
	APIKey      string `yaml:"api_key,omitempty"`
	HistoryPath string `yaml:"history_path,omitempty"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Load reads a finlens.yaml file from disk. Fields the file leaves out keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// MaxFallbackYears bounds dart.fallback_years.
const MaxFallbackYears = 2

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DART: DARTConfig{
			BaseURL:        "https://opendart.fss.or.kr/api",
			Timeout:        30 * time.Second,
			FallbackYears:  MaxFallbackYears,
			LatestYearScan: 5,
		},
		CorpCode: CorpCodeConfig{
			DBPath: "corpcode.db",
		},
		Advisor: AdvisorConfig{
			Model: "gemini-1.5-flash",
		},
		Server: ServerConfig{
			Addr: ":5000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.DART.Timeout <= 0 {
		return fmt.Errorf("dart.timeout must be positive, got %s", c.DART.Timeout)
	}
	if c.DART.FallbackYears < 0 || c.DART.FallbackYears > MaxFallbackYears {
		return fmt.Errorf("dart.fallback_years must be between 0 and %d, got %d", MaxFallbackYears, c.DART.FallbackYears)
	}
	if c.DART.LatestYearScan < 1 {
		return fmt.Errorf("dart.latest_year_scan must be at least 1, got %d", c.DART.LatestYearScan)
	}
	if c.CorpCode.DBPath == "" {
		return fmt.Errorf("corpcode.db_path is required")
	}
	return nil
}

// ABOUTME: Configuration loading and parsing for woocommerce-mcp
// ABOUTME: Supports YAML files with environment variable expansion and env overrides

package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the complete woocommerce-mcp configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Logging   LoggingConfig   `yaml:"logging"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds the SSE server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	Funnel    bool   `yaml:"funnel"` // Enable public Funnel (HTTPS on :443)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AnalyticsConfig holds the default thresholds and windows for the
// order-analytics tools. Callers can override these per invocation.
type AnalyticsConfig struct {
	LowStockThreshold int `yaml:"low_stock_threshold"`
	RepeatRefundCount int `yaml:"repeat_refund_count"`
	RefundWindowDays  int `yaml:"refund_window_days"`
	SalesWindowDays   int `yaml:"sales_window_days"`
}

// Default returns the configuration used when no config file exists. The
// server listens on :8000, matching what MCP clients are pointed at by
// default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr: ":8000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Analytics: AnalyticsConfig{
			LowStockThreshold: 10,
			RepeatRefundCount: 2,
			RefundWindowDays:  90,
			SalesWindowDays:   30,
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. Environment variables in the format ${VAR_NAME} are expanded. A
// missing file is not an error: the adapter is fully usable from
// environment variables alone, so defaults are returned instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		// Expand environment variables in the raw YAML content
		expandedData := expandEnvVars(string(data))

		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyEnvOverrides applies process-environment overrides on top of the
// file values. PORT overrides the listen address, matching how hosting
// platforms hand out ports.
func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.HTTPAddr = ":" + port
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	// A listen address is required unless Tailscale provides the listener
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	// Tailscale requires a hostname
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json (got %q)", c.Logging.Format)
	}

	if c.Analytics.LowStockThreshold < 0 {
		return fmt.Errorf("analytics.low_stock_threshold must not be negative")
	}
	if c.Analytics.RepeatRefundCount < 1 {
		return fmt.Errorf("analytics.repeat_refund_count must be at least 1")
	}
	if c.Analytics.RefundWindowDays < 1 {
		return fmt.Errorf("analytics.refund_window_days must be at least 1")
	}
	if c.Analytics.SalesWindowDays < 1 {
		return fmt.Errorf("analytics.sales_window_days must be at least 1")
	}

	return nil
}

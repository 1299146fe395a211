// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and env overrides

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv("PORT", "")

	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_addr: "0.0.0.0:8080"

logging:
  level: "debug"
  format: "json"

analytics:
  low_stock_threshold: 5
  repeat_refund_count: 3
  refund_window_days: 60
  sales_window_days: 14
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
	if cfg.Analytics.LowStockThreshold != 5 {
		t.Errorf("Analytics.LowStockThreshold = %d, want 5", cfg.Analytics.LowStockThreshold)
	}
	if cfg.Analytics.RepeatRefundCount != 3 {
		t.Errorf("Analytics.RepeatRefundCount = %d, want 3", cfg.Analytics.RepeatRefundCount)
	}
	if cfg.Analytics.RefundWindowDays != 60 {
		t.Errorf("Analytics.RefundWindowDays = %d, want 60", cfg.Analytics.RefundWindowDays)
	}
	if cfg.Analytics.SalesWindowDays != 14 {
		t.Errorf("Analytics.SalesWindowDays = %d, want 14", cfg.Analytics.SalesWindowDays)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("TEST_TS_AUTHKEY", "tskey-from-env")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
tailscale:
  enabled: true
  hostname: "store-mcp"
  auth_key: "${TEST_TS_AUTHKEY}"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Tailscale.AuthKey != "tskey-from-env" {
		t.Errorf("Tailscale.AuthKey = %q, want %q", cfg.Tailscale.AuthKey, "tskey-from-env")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v, want defaults for missing file", err)
	}

	want := Default()
	if cfg.Server.HTTPAddr != want.Server.HTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, want.Server.HTTPAddr)
	}
	if cfg.Logging.Level != want.Logging.Level {
		t.Errorf("Logging.Level = %q, want default %q", cfg.Logging.Level, want.Logging.Level)
	}
	if cfg.Analytics.LowStockThreshold != want.Analytics.LowStockThreshold {
		t.Errorf("Analytics.LowStockThreshold = %d, want default %d",
			cfg.Analytics.LowStockThreshold, want.Analytics.LowStockThreshold)
	}
}

func TestLoad_PartialConfigKeepsDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: "warn"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "warn")
	}
	// Everything the file does not mention keeps its default
	if cfg.Server.HTTPAddr != ":8000" {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, ":8000")
	}
	if cfg.Analytics.RepeatRefundCount != 2 {
		t.Errorf("Analytics.RepeatRefundCount = %d, want default 2", cfg.Analytics.RepeatRefundCount)
	}
}

func TestLoad_PortOverride(t *testing.T) {
	t.Setenv("PORT", "9090")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  http_addr: "0.0.0.0:8080"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != ":9090" {
		t.Errorf("Server.HTTPAddr = %q, want PORT override %q", cfg.Server.HTTPAddr, ":9090")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Invalid YAML content
	configContent := `
server:
  http_addr "missing colon"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return *Default()
	}

	tests := []struct {
		name          string
		mutate        func(*Config)
		wantErr       bool
		wantErrSubstr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name: "tailscale enabled allows empty listen address",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
				c.Tailscale.Enabled = true
				c.Tailscale.Hostname = "store-mcp"
			},
		},
		{
			name: "tailscale enabled requires hostname",
			mutate: func(c *Config) {
				c.Tailscale.Enabled = true
				c.Tailscale.Hostname = ""
			},
			wantErr:       true,
			wantErrSubstr: "tailscale.hostname is required",
		},
		{
			name: "tailscale disabled requires listen address",
			mutate: func(c *Config) {
				c.Server.HTTPAddr = ""
			},
			wantErr:       true,
			wantErrSubstr: "server.http_addr is required",
		},
		{
			name: "unknown log level rejected",
			mutate: func(c *Config) {
				c.Logging.Level = "verbose"
			},
			wantErr:       true,
			wantErrSubstr: "logging.level",
		},
		{
			name: "unknown log format rejected",
			mutate: func(c *Config) {
				c.Logging.Format = "xml"
			},
			wantErr:       true,
			wantErrSubstr: "logging.format",
		},
		{
			name: "negative low stock threshold rejected",
			mutate: func(c *Config) {
				c.Analytics.LowStockThreshold = -1
			},
			wantErr:       true,
			wantErrSubstr: "low_stock_threshold",
		},
		{
			name: "zero repeat refund count rejected",
			mutate: func(c *Config) {
				c.Analytics.RepeatRefundCount = 0
			},
			wantErr:       true,
			wantErrSubstr: "repeat_refund_count",
		},
		{
			name: "zero sales window rejected",
			mutate: func(c *Config) {
				c.Analytics.SalesWindowDays = 0
			},
			wantErr:       true,
			wantErrSubstr: "sales_window_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Validate() expected error containing %q, got nil", tt.wantErrSubstr)
					return
				}
				if !strings.Contains(err.Error(), tt.wantErrSubstr) {
					t.Errorf("Validate() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
				}
			} else {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
			}
		})
	}
}

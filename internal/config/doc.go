// Package config handles configuration loading for woocommerce-mcp.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable
// expansion. A missing file is fine: the adapter runs entirely from
// environment variables with built-in defaults, so a config file is only
// needed to change the listen address, logging, Tailscale exposure, or the
// analytics defaults.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from WOOCOMMERCE_MCP_CONFIG environment variable
//  2. ./config.yaml (current directory)
//  3. ~/.config/woocommerce-mcp/config.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	tailscale:
//	  auth_key: "${TS_AUTHKEY}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8000"   # SSE transport listen address
//
// The PORT environment variable, when set, overrides the listen address
// with ":<PORT>". Hosting platforms hand out ports this way.
//
// Tailscale:
//
//	tailscale:
//	  enabled: false
//	  hostname: "store-mcp"
//	  auth_key: "${TS_AUTHKEY}"
//	  ephemeral: false
//	  funnel: false
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// Analytics defaults (caller-overridable per tool call):
//
//	analytics:
//	  low_stock_threshold: 10
//	  repeat_refund_count: 2
//	  refund_window_days: 90
//	  sales_window_days: 30
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load(path)
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

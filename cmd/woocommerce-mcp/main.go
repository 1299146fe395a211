// ABOUTME: Entry point for the woocommerce-mcp server
// ABOUTME: Exposes store, support, CRM, theme, and OCR APIs as MCP tools

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/config"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/mcp"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/packs"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
__      _____   ___       _ __ ___   ___ _ __
\ \ /\ / / _ \ / _ \ _____| '_ ' _ \ / __| '_ \
 \ V  V / (_) | (_) |_____| | | | | | (__| |_) |
  \_/\_/ \___/ \___/      |_| |_| |_|\___| .__/
                                         |_|
`

// getConfigPath returns the path to the config file.
// Priority: WOOCOMMERCE_MCP_CONFIG env var > XDG_CONFIG_HOME/woocommerce-mcp/config.yaml > ~/.config/woocommerce-mcp/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("WOOCOMMERCE_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "woocommerce-mcp", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: woocommerce-mcp <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve     Start the SSE server")
		fmt.Println("  stdio     Serve MCP over stdin/stdout")
		fmt.Println("  tools     List the registered tools")
		fmt.Println("  check     Check connectivity to the configured integrations")
		fmt.Println("  health    Check a running server's health endpoint")
		fmt.Println("  version   Print the version")
		os.Exit(1)
	}

	// Secrets come from the environment; a .env file is a convenience for
	// local development and its absence is fine.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "stdio":
		err = runStdio(ctx)
	case "tools":
		err = runTools()
	case "check":
		err = runCheck(ctx)
	case "health":
		err = runHealth(ctx)
	case "version":
		fmt.Println(version)
	case "help":
		fmt.Println("Usage: woocommerce-mcp <serve|stdio|tools|check|health|version>")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// buildRegistry wires the credential store, shared HTTP client, and every
// tool pack into one registry.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*tools.Registry, error) {
	creds := credentials.NewStore()
	httpc := services.NewHTTPClient()

	registry := tools.NewRegistry(creds, logger)
	for _, pack := range []*tools.Pack{
		packs.WooCommercePack(creds, httpc, cfg.Analytics),
		packs.ZendeskPack(creds, httpc),
		packs.ZendeskSellPack(creds, httpc),
		packs.ThemePack(creds, httpc),
		packs.OCRPack(creds, httpc),
	} {
		if err := registry.RegisterPack(pack); err != nil {
			return nil, fmt.Errorf("registering pack %s: %w", pack.ID, err)
		}
	}
	return registry, nil
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging, os.Stdout)

	// Startup info
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      %s\n", cfg.Server.HTTPAddr)

	apiKey := os.Getenv("MCP_SSE_API_KEY")
	green.Print("    ▶ ")
	fmt.Print("API key:   ")
	if apiKey != "" {
		fmt.Println("configured")
	} else {
		yellow.Println("not set (server is open)")
	}

	// Tailscale status
	if cfg.Tailscale.Enabled {
		green.Print("    ▶ ")
		fmt.Printf("Tailscale: ")
		cyan.Print(cfg.Tailscale.Hostname)
		if cfg.Tailscale.Funnel {
			yellow.Print(" [funnel]")
		}
		if cfg.Tailscale.Ephemeral {
			gray.Print(" (ephemeral)")
		}
		fmt.Println()
	}

	fmt.Println()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("starting woocommerce-mcp",
		"config", configPath,
		"http_addr", cfg.Server.HTTPAddr,
		"tools", registry.Count(),
	)

	server, err := mcp.NewServer(mcp.Config{
		HTTPAddr:   cfg.Server.HTTPAddr,
		APIKey:     apiKey,
		Tailscale:  cfg.Tailscale,
		Dispatcher: mcp.NewDispatcher(registry, logger, version),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

func runStdio(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// stdout carries protocol frames, so all logging goes to stderr.
	logger := setupLogger(cfg.Logging, os.Stderr)

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	server := mcp.NewStdioServer(mcp.NewDispatcher(registry, logger, version), logger)
	return server.Run(ctx)
}

func runTools() error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	creds := credentials.NewStore()
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	gray := color.New(color.FgHiBlack)

	for _, desc := range registry.Descriptors() {
		cyan.Printf("%-42s", desc.Name)

		configured := true
		for _, svc := range desc.Credentials {
			if _, err := creds.Get(svc); err != nil {
				configured = false
			}
		}
		if configured {
			green.Print(" ✓ ")
		} else {
			yellow.Print(" ✗ ")
		}

		for _, svc := range desc.Credentials {
			gray.Printf("[%s] ", svc)
		}
		fmt.Printf("%s\n", desc.Description)
	}

	fmt.Println()
	fmt.Printf("%d tools registered\n", registry.Count())
	return nil
}

// runCheck makes one light call per configured integration and reports
// reachability. Unconfigured integrations are skipped, not failed.
func runCheck(ctx context.Context) error {
	creds := credentials.NewStore()
	httpc := services.NewHTTPClient()

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	gray := color.New(color.FgHiBlack)

	report := func(svc credentials.Service, err error) {
		if err != nil {
			red.Print("  ✗ ")
			fmt.Printf("%-14s %v\n", svc, err)
			return
		}
		green.Print("  ✓ ")
		fmt.Printf("%-14s ok\n", svc)
	}
	skip := func(svc credentials.Service, err error) {
		gray.Printf("  - %-14s skipped: %v\n", svc, err)
	}

	probes := []struct {
		service credentials.Service
		probe   func(*credentials.Bundle) error
	}{
		{credentials.ServiceWooCommerce, func(b *credentials.Bundle) error {
			_, err := services.NewWooCommerce(b, httpc).Products(ctx, url.Values{"per_page": {"1"}})
			return err
		}},
		{credentials.ServiceZendesk, func(b *credentials.Bundle) error {
			_, err := services.NewZendesk(b, httpc).Get(ctx, "users/me.json", nil)
			return err
		}},
		{credentials.ServiceZendeskSell, func(b *credentials.Bundle) error {
			_, err := services.NewZendeskSell(b, httpc).Get(ctx, "leads", url.Values{"per_page": {"1"}})
			return err
		}},
		{credentials.ServiceTheme, func(b *credentials.Bundle) error {
			_, err := services.NewTheme(b, httpc).Get(ctx, "quote-requests", url.Values{"per_page": {"1"}})
			return err
		}},
	}

	for _, p := range probes {
		bundle, err := creds.Get(p.service)
		if err != nil {
			skip(p.service, err)
			continue
		}
		report(p.service, p.probe(bundle))
	}

	// The OCR service bills per request, so reachability is only checked
	// to the extent of having a key.
	if _, err := creds.Get(credentials.ServiceOCR); err != nil {
		skip(credentials.ServiceOCR, err)
	} else {
		green.Print("  ✓ ")
		fmt.Printf("%-14s key present (not probed)\n", credentials.ServiceOCR)
	}

	return nil
}

func runHealth(ctx context.Context) error {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Server.HTTPAddr
	if addr != "" && addr[0] == ':' {
		addr = "localhost" + addr
	}
	reqURL := fmt.Sprintf("http://%s/health", addr)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if key := os.Getenv("MCP_SSE_API_KEY"); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

// ABOUTME: Adapter for the store theme's custom REST namespace (wp-json/theme/v1).
// ABOUTME: Basic auth plus a per-site X-API-Key header on every request.

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// Theme calls the business endpoints the store theme registers under
// wp-json/theme/v1 (quote requests, sample boxes). It lives on the same
// WordPress install as the commerce API but uses its own auth pair plus an
// API key header.
type Theme struct {
	baseURL  string
	apiKey   string
	username string
	password string
	httpc    *http.Client
}

// NewTheme builds an adapter from a resolved credential bundle.
func NewTheme(b *credentials.Bundle, httpc *http.Client) *Theme {
	return &Theme{
		baseURL:  strings.TrimRight(b.Get(credentials.EnvStoreURL), "/") + "/wp-json/theme/v1",
		apiKey:   b.Get(credentials.EnvThemeAPIKey),
		username: b.Get(credentials.EnvThemeAPIUsername),
		password: b.Get(credentials.EnvThemeAPIPassword),
		httpc:    httpc,
	}
}

func (c *Theme) request(ctx context.Context, method, path string, query url.Values, payload any) (any, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reqBody *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding theme payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building theme request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := do(c.httpc, credentials.ServiceTheme, req)
	if err != nil {
		return nil, err
	}
	return decodeJSON(credentials.ServiceTheme, body)
}

// Get performs a GET and returns the decoded response.
func (c *Theme) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return c.request(ctx, http.MethodGet, path, query, nil)
}

// Post performs a POST with a JSON payload and returns the decoded
// response. A 204 decodes to {"success": true}.
func (c *Theme) Post(ctx context.Context, path string, payload any) (any, error) {
	return c.request(ctx, http.MethodPost, path, nil, payload)
}

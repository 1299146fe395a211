// ABOUTME: Zendesk Sell (Base) CRM API adapter with bearer-token auth.
// ABOUTME: Read-only GET passthrough for leads, contacts, and deals.

package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// sellBaseURL is the Sell API endpoint. Sell kept the getbase.com domain
// from before the Zendesk acquisition.
const sellBaseURL = "https://api.getbase.com/v2"

// ZendeskSell calls the Sell CRM API with a personal access token.
type ZendeskSell struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewZendeskSell builds an adapter from a resolved credential bundle.
func NewZendeskSell(b *credentials.Bundle, httpc *http.Client) *ZendeskSell {
	return &ZendeskSell{
		baseURL: sellBaseURL,
		token:   b.Get(credentials.EnvZendeskSellToken),
		httpc:   httpc,
	}
}

// Get performs a GET and returns the decoded response. Sell wraps single
// resources as {"data": {...}} and collections as {"items": [...]}; the
// wrapper is passed through untouched.
func (c *ZendeskSell) Get(ctx context.Context, path string, query url.Values) (any, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building zendesk sell request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	body, err := do(c.httpc, credentials.ServiceZendeskSell, req)
	if err != nil {
		return nil, err
	}
	return decodeJSON(credentials.ServiceZendeskSell, body)
}

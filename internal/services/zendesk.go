// ABOUTME: Zendesk Support API adapter using the email/token basic-auth convention.
// ABOUTME: Generic GET/PUT passthrough; responses are returned as decoded JSON.

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

// Zendesk calls the Support API at https://<subdomain>.zendesk.com/api/v2.
// Auth follows Zendesk's API-token convention: basic auth with username
// "<email>/token" and the API token as the password.
type Zendesk struct {
	baseURL string
	email   string
	token   string
	httpc   *http.Client
}

// NewZendesk builds an adapter from a resolved credential bundle.
func NewZendesk(b *credentials.Bundle, httpc *http.Client) *Zendesk {
	return &Zendesk{
		baseURL: fmt.Sprintf("https://%s.zendesk.com/api/v2", b.Get(credentials.EnvZendeskSubdomain)),
		email:   b.Get(credentials.EnvZendeskEmail),
		token:   b.Get(credentials.EnvZendeskAPIToken),
		httpc:   httpc,
	}
}

func (c *Zendesk) request(ctx context.Context, method, path string, query url.Values, payload any) (any, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reqBody *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding zendesk payload: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building zendesk request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.SetBasicAuth(c.email+"/token", c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	body, err := do(c.httpc, credentials.ServiceZendesk, req)
	if err != nil {
		return nil, err
	}
	return decodeJSON(credentials.ServiceZendesk, body)
}

// Get performs a GET and returns the decoded response.
func (c *Zendesk) Get(ctx context.Context, path string, query url.Values) (any, error) {
	return c.request(ctx, http.MethodGet, path, query, nil)
}

// Put performs a PUT with a JSON payload and returns the decoded response.
// A 204 decodes to {"success": true}.
func (c *Zendesk) Put(ctx context.Context, path string, payload any) (any, error) {
	return c.request(ctx, http.MethodPut, path, nil, payload)
}

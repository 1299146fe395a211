// ABOUTME: OCR service adapter posting form-encoded parse requests.
// ABOUTME: API key travels in the apikey header; the endpoint is overridable for self-hosted deployments.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// defaultOCRURL is the hosted ocr.space endpoint. OCR_API_URL overrides it
// for self-hosted instances.
const defaultOCRURL = "https://api.ocr.space/parse/image"

// OCR submits images for text extraction. The API takes form-encoded
// requests and keys auth off an apikey header.
type OCR struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

// NewOCR builds an adapter from a resolved credential bundle.
func NewOCR(b *credentials.Bundle, httpc *http.Client) *OCR {
	endpoint := b.Get(credentials.EnvOCRAPIURL)
	if endpoint == "" {
		endpoint = defaultOCRURL
	}
	return &OCR{
		endpoint: endpoint,
		apiKey:   b.Get(credentials.EnvOCRAPIKey),
		httpc:    httpc,
	}
}

// Parse posts a form-encoded parse request and returns the decoded
// response object.
func (c *OCR) Parse(ctx context.Context, form url.Values) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building ocr request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := do(c.httpc, credentials.ServiceOCR, req)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding ocr response: %w", err)
	}
	return result, nil
}

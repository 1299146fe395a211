// ABOUTME: Shared HTTP plumbing for the remote service adapters.
// ABOUTME: Uniform error translation: transport failures and non-2xx responses become typed errors.

package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// maxErrorBody caps how much of a remote error response is carried in a
// ServiceError. Remote APIs occasionally return full HTML error pages.
const maxErrorBody = 64 << 10

// NewHTTPClient returns the client shared by all adapters. Tool calls are
// interactive, so the timeout is the only deadline applied; there is no
// retry policy.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

// ServiceError is a non-2xx response from a remote API. The status code
// and response body are preserved for the caller.
type ServiceError struct {
	Service    credentials.Service
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Body)
}

// NetworkError is a transport-level failure reaching a remote service:
// DNS, connect, TLS, or timeout. The underlying error is preserved.
type NetworkError struct {
	Service credentials.Service
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// do executes req and applies the uniform adapter contract: transport
// failures become NetworkError, non-2xx responses become ServiceError, and
// the raw body is returned on success.
func do(httpc *http.Client, service credentials.Service, req *http.Request) ([]byte, error) {
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, &NetworkError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Service: service, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody := body
		if len(errBody) > maxErrorBody {
			errBody = errBody[:maxErrorBody]
		}
		return nil, &ServiceError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Body:       string(errBody),
		}
	}

	return body, nil
}

// decodeJSON parses a successful response body. An empty body (204 No
// Content and friends) decodes to {"success": true} so write-style calls
// still produce a result the client can display.
func decodeJSON(service credentials.Service, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return map[string]any{"success": true}, nil
	}

	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", service, err)
	}
	return v, nil
}

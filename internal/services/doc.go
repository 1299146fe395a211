// Package services contains the per-service HTTP adapters.
//
// # Overview
//
// Each adapter wraps one remote API behind a base URL, an auth scheme, and
// a minimal request/response cycle:
//
//   - WooCommerce: wp-json/wc/v3 with consumer key/secret as query params
//   - Zendesk: api/v2 with "<email>/token" basic auth
//   - ZendeskSell: api.getbase.com/v2 with a bearer token
//   - Theme: wp-json/theme/v1 with basic auth plus an X-API-Key header
//   - OCR: form-encoded parse requests with an apikey header
//
// # Error Translation
//
// All adapters share one contract. A transport-level failure (DNS,
// connect, TLS, timeout) surfaces as *NetworkError. A non-2xx response
// surfaces as *ServiceError carrying the remote status code and body.
// Nothing is retried: tool calls are interactive and whether a given call
// is idempotent is unknown at this layer.
//
// Successful empty responses (204 No Content) decode to
// {"success": true} so write-style calls still return a displayable
// result.
//
// # No State
//
// Adapters hold credentials and an *http.Client, nothing else. There is no
// response caching and no connection state beyond the client's own pool;
// every call reaches the remote service.
package services

// Package mcp implements the Model Context Protocol front-end for the adapter.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This
// package exposes the registered tool packs to external AI clients (Claude
// Desktop, other LLMs, or custom applications) over two transports that share
// one JSON-RPC dispatcher.
//
// # Protocol
//
// JSON-RPC 2.0, protocol revision 2024-11-05. Supported methods:
//
//   - initialize - handshake; reports server info and the tools capability
//   - notifications/initialized - client ack, no response
//   - ping - liveness, empty result
//   - tools/list - tool catalog with JSON Schema input definitions
//   - tools/call - invoke one tool by name with an arguments object
//
// Notifications (requests without an id) never produce a response on either
// transport.
//
// # Transports
//
// The stdio transport reads one JSON-RPC message per line from stdin and
// writes single-line responses to stdout, serially. It is the transport a
// local client spawns as a subprocess; all logging goes to stderr.
//
// The SSE transport serves sessions over HTTP:
//
//   - GET /sse - opens the event stream; the first event names the
//     session's POST endpoint (/messages?session_id=<id>)
//   - POST /messages - accepts one message, returns 202 Accepted; the
//     response is delivered as a message event on the stream
//   - GET /health, GET /health/ready - liveness and readiness
//
// Tool calls are dispatched on their own goroutines and deliberately do not
// inherit the POST request's context: a client closing the POST early must
// not cancel the remote call.
//
// # Authentication
//
// The SSE transport takes a static API key. When configured, every request
// must carry it as X-API-Key or a bearer token:
//
//	X-API-Key: <key>
//	Authorization: Bearer <key>
//
// Requests without the key are rejected with 401 before any dispatch. With
// no key configured the server is open for local development. The stdio
// transport has no gate; process access is the boundary.
//
// # Tool Failures
//
// Errors from tool handlers never become JSON-RPC errors. They are encoded
// as isError tool results with a structured body:
//
//	{
//	  "tool": "get_products",
//	  "error": "missing_credentials",
//	  "message": "missing credentials for woocommerce: WC_URL, ..."
//	}
//
// JSON-RPC errors are reserved for protocol problems: parse failures,
// malformed requests, unknown methods, and bad params.
package mcp

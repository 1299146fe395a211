// ABOUTME: Transport-independent JSON-RPC dispatch for the MCP methods.
// ABOUTME: Tool failures become structured isError results; the process never dies on one.

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

// Dispatcher routes parsed JSON-RPC requests to the MCP method handlers.
// Both transports share one dispatcher; it holds no per-session state.
type Dispatcher struct {
	registry *tools.Registry
	logger   *slog.Logger
	version  string
}

// NewDispatcher creates a dispatcher over the given tool registry. The
// version string is reported in the initialize handshake.
func NewDispatcher(registry *tools.Registry, logger *slog.Logger, version string) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{registry: registry, logger: logger, version: version}
}

// ToolCount reports the number of registered tools.
func (d *Dispatcher) ToolCount() int {
	return d.registry.Count()
}

// Dispatch parses a raw JSON-RPC message and handles it. The returned
// response is nil for notifications, which must not be answered.
func (d *Dispatcher) Dispatch(ctx context.Context, data []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return newErrorResponse(nil, JSONRPCParseError, "invalid JSON")
	}
	return d.Handle(ctx, req)
}

// Handle routes one parsed request. Notifications (absent or null id)
// return nil.
func (d *Dispatcher) Handle(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	if req.JSONRPC != "2.0" {
		return newErrorResponse(req.ID, JSONRPCInvalidRequest, "invalid JSON-RPC version")
	}

	isNotification := len(req.ID) == 0 || string(req.ID) == "null"

	d.logger.Debug("MCP request",
		"method", req.Method,
		"is_notification", isNotification,
	)

	if isNotification {
		d.handleNotification(req)
		return nil
	}

	switch req.Method {
	case "initialize":
		return d.handleInitialize(req)
	case "ping":
		return newResponse(req.ID, map[string]any{})
	case "tools/list":
		return d.handleToolsList(req)
	case "tools/call":
		return d.handleToolsCall(ctx, req)
	default:
		return newErrorResponse(req.ID, JSONRPCMethodNotFound, "method not found")
	}
}

// handleNotification accepts a notification. Nothing is ever sent back.
func (d *Dispatcher) handleNotification(req JSONRPCRequest) {
	switch req.Method {
	case "notifications/initialized":
		d.logger.Info("MCP client initialized")
	default:
		d.logger.Debug("ignoring notification", "method", req.Method)
	}
}

// handleInitialize handles the MCP initialize handshake.
func (d *Dispatcher) handleInitialize(req JSONRPCRequest) *JSONRPCResponse {
	d.logger.Info("MCP initialize",
		"protocol_version", protocolVersion,
		"tool_count", d.registry.Count(),
	)

	result := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": d.version,
		},
	}
	return newResponse(req.ID, result)
}

// handleToolsList handles tools/list requests.
func (d *Dispatcher) handleToolsList(req JSONRPCRequest) *JSONRPCResponse {
	descriptors := d.registry.Descriptors()

	result := MCPListToolsResult{
		Tools: make([]MCPToolInfo, len(descriptors)),
	}
	for i, desc := range descriptors {
		result.Tools[i] = MCPToolInfo{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: desc.InputSchema(),
		}
	}

	d.logger.Debug("tools/list", "count", len(descriptors))

	return newResponse(req.ID, result)
}

// handleToolsCall handles tools/call requests. Protocol-level problems
// (bad params, missing name) are JSON-RPC errors; everything that goes
// wrong inside the tool comes back as an isError result so the client
// sees a well-formed failure instead of a dropped request.
func (d *Dispatcher) handleToolsCall(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	var params MCPCallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return newErrorResponse(req.ID, JSONRPCInvalidParams, "invalid params")
		}
	}

	if params.Name == "" {
		return newErrorResponse(req.ID, JSONRPCInvalidParams, "tool name is required")
	}

	args := params.Arguments
	if args == nil {
		args = map[string]any{}
	}

	d.logger.Debug("tools/call", "tool_name", params.Name)

	result, err := d.registry.Invoke(ctx, params.Name, args)
	if err != nil {
		d.logger.Warn("tool execution failed",
			"tool_name", params.Name,
			"kind", errorKind(err),
			"error", err,
		)
		return newResponse(req.ID, failureResult(params.Name, err))
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		d.logger.Warn("tool result not serializable", "tool_name", params.Name, "error", err)
		return newResponse(req.ID, failureResult(params.Name, err))
	}

	return newResponse(req.ID, MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: string(text)}},
	})
}

// toolFailure is the structured body of an isError tool result.
type toolFailure struct {
	Tool    string `json:"tool"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// failureResult encodes a handler error as an isError tool result.
func failureResult(tool string, err error) MCPCallToolResult {
	body, marshalErr := json.MarshalIndent(toolFailure{
		Tool:    tool,
		Error:   errorKind(err),
		Message: err.Error(),
	}, "", "  ")
	if marshalErr != nil {
		body = []byte(err.Error())
	}
	return MCPCallToolResult{
		Content: []MCPContent{{Type: "text", Text: string(body)}},
		IsError: true,
	}
}

// errorKind classifies a handler error for the structured failure body.
func errorKind(err error) string {
	var missing *credentials.MissingError
	var invalid *tools.InvalidArgumentError
	var svcErr *services.ServiceError
	var netErr *services.NetworkError

	switch {
	case errors.As(err, &missing):
		return "missing_credentials"
	case errors.As(err, &invalid):
		return "invalid_argument"
	case errors.Is(err, tools.ErrUnknownTool):
		return "unknown_tool"
	case errors.As(err, &svcErr):
		return "service_error"
	case errors.As(err, &netErr):
		return "network_error"
	}
	return "internal_error"
}

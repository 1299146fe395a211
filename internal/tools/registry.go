// ABOUTME: Thread-safe registry mapping tool names to descriptors and handlers.
// ABOUTME: Dispatch validates arguments and credentials before a handler ever runs.

package tools

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// Handler executes one tool call. args has already passed schema
// validation and carries defaults for absent optional parameters.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// Tool pairs a descriptor with its handler.
type Tool struct {
	Descriptor Descriptor
	Handler    Handler
}

// Pack is a named group of tools registered together.
type Pack struct {
	ID    string
	Tools []*Tool
}

// Registry maintains the tool table. It is populated at startup and
// immutable afterwards from the callers' point of view; the lock exists
// because the SSE transport dispatches calls concurrently.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	owners map[string]string // tool name -> owning pack, for collision messages
	creds  *credentials.Store
	logger *slog.Logger
}

// NewRegistry creates an empty registry backed by the given credential
// store.
func NewRegistry(creds *credentials.Store, logger *slog.Logger) *Registry {
	return &Registry{
		tools:  make(map[string]*Tool),
		owners: make(map[string]string),
		creds:  creds,
		logger: logger,
	}
}

// RegisterPack validates and stores a pack's tools.
// Returns ErrToolCollision if any tool name already exists.
func (r *Registry) RegisterPack(pack *Pack) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for collisions before registering anything
	for _, tool := range pack.Tools {
		name := tool.Descriptor.Name
		if owner, exists := r.owners[name]; exists {
			return fmt.Errorf("%w: tool '%s' already registered by pack '%s'",
				ErrToolCollision, name, owner)
		}
	}

	for _, tool := range pack.Tools {
		r.tools[tool.Descriptor.Name] = tool
		r.owners[tool.Descriptor.Name] = pack.ID
	}

	r.logger.Info("=== TOOL PACK REGISTERED ===",
		"pack_id", pack.ID,
		"tool_count", len(pack.Tools),
		"total_tools", len(r.tools),
	)

	return nil
}

// Descriptors returns every registered descriptor sorted by tool name.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.tools))
	for _, tool := range r.tools {
		out = append(out, tool.Descriptor)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Invoke dispatches one tool call: look up the tool, validate the
// argument mapping, resolve the required credential bundles, then run the
// handler. No remote adapter is reached unless every check passes.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	r.mu.RLock()
	tool, exists := r.tools[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	validated, err := tool.Descriptor.validateArgs(args)
	if err != nil {
		return nil, err
	}

	for _, service := range tool.Descriptor.Credentials {
		if _, err := r.creds.Get(service); err != nil {
			return nil, err
		}
	}

	r.logger.Debug("invoking tool", "tool", name)
	return tool.Handler(ctx, validated)
}

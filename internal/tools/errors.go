// ABOUTME: Error taxonomy for tool dispatch.
// ABOUTME: Sentinels for registry misses plus a typed error for schema violations.

package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool indicates a dispatch miss: no registered tool has the
// requested name.
var ErrUnknownTool = errors.New("unknown tool")

// ErrToolCollision indicates a tool name already exists from another pack.
var ErrToolCollision = errors.New("tool name collision")

// InvalidArgumentError reports a caller-supplied argument mapping that
// fails the tool's declared schema. Field names the offending parameter.
type InvalidArgumentError struct {
	Tool   string
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Tool, e.Field, e.Reason)
}

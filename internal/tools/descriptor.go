// ABOUTME: Static tool descriptors: name, parameter table, required credentials.
// ABOUTME: Renders JSON Schema for tools/list and validates argument mappings at dispatch.

package tools

import (
	"math"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// ParamType is the JSON Schema type of a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param describes one named parameter of a tool.
type Param struct {
	Name        string
	Type        ParamType
	Description string
	Required    bool
	Default     any
}

// Descriptor is the immutable description of one tool: its name, its
// parameter table, and the credential bundles it needs resolved before the
// handler runs. Registration order is irrelevant; name uniqueness is
// enforced by the registry.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
	Credentials []credentials.Service
}

// InputSchema renders the parameter table as the JSON Schema object
// advertised by tools/list.
func (d Descriptor) InputSchema() map[string]any {
	properties := make(map[string]any, len(d.Params))
	var required []string
	for _, p := range d.Params {
		prop := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Default != nil {
			prop["default"] = p.Default
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// validateArgs checks an argument mapping against the descriptor and
// returns a copy with defaults filled in for absent optional parameters.
// Undeclared fields are rejected so a typo'd argument fails loudly instead
// of being silently ignored.
func (d Descriptor) validateArgs(args map[string]any) (map[string]any, error) {
	declared := make(map[string]Param, len(d.Params))
	for _, p := range d.Params {
		declared[p.Name] = p
	}

	for name := range args {
		if _, ok := declared[name]; !ok {
			return nil, &InvalidArgumentError{Tool: d.Name, Field: name, Reason: "not a declared parameter"}
		}
	}

	out := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		value, present := args[p.Name]
		if !present || value == nil {
			if p.Required {
				return nil, &InvalidArgumentError{Tool: d.Name, Field: p.Name, Reason: "required parameter is missing"}
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		if reason := checkType(p.Type, value); reason != "" {
			return nil, &InvalidArgumentError{Tool: d.Name, Field: p.Name, Reason: reason}
		}
		out[p.Name] = value
	}
	return out, nil
}

// checkType reports why value does not satisfy the declared type, or ""
// when it does. JSON decoding hands all numbers over as float64, so the
// numeric checks accept the Go integer kinds and float64 alike.
func checkType(t ParamType, value any) string {
	switch t {
	case TypeString:
		if _, ok := value.(string); !ok {
			return "must be a string"
		}
	case TypeBoolean:
		if _, ok := value.(bool); !ok {
			return "must be a boolean"
		}
	case TypeNumber:
		switch value.(type) {
		case int, int64, float64:
		default:
			return "must be a number"
		}
	case TypeInteger:
		switch v := value.(type) {
		case int, int64:
		case float64:
			if v != math.Trunc(v) {
				return "must be an integer"
			}
		default:
			return "must be an integer"
		}
	}
	return ""
}

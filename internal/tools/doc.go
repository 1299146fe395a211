// Package tools holds the tool registry and dispatch core shared by both
// transports.
//
// # Overview
//
// A Descriptor is a static description of one callable tool: name,
// parameter table, and the credential bundles its handler needs. Packs
// group tools, and a Registry maps tool names to handlers. Both the stdio
// and the SSE transport dispatch through the same Registry; they differ
// only in framing.
//
// # Dispatch
//
// Invoke runs the checks in a fixed order, and a handler only executes
// when all of them pass:
//
//  1. Name lookup (miss: ErrUnknownTool)
//  2. Argument validation against the parameter table
//     (failure: *InvalidArgumentError naming the field)
//  3. Credential resolution for every declared service
//     (failure: *credentials.MissingError naming the variables)
//
// Argument validation rejects undeclared fields, enforces presence of
// required parameters, checks JSON Schema primitive types, and fills in
// declared defaults. Handlers therefore never see a malformed mapping.
//
// # Schemas
//
// Descriptor.InputSchema renders the parameter table as a JSON Schema
// object; the protocol layer embeds it in tools/list responses.
package tools

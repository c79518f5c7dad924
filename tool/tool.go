// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities (file writes, SQL queries, data reads) with
// schema validated arguments, consistent error handling and per-tool review
// policies for human-in-the-loop execution.
package tool

import (
	"context"
	"fmt"

	"github.com/agenthub/agenthub/core"
	"github.com/agenthub/agenthub/internal/util"
	"github.com/agenthub/agenthub/oracle"
)

// Tool defines the interface for extending agents with external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions (snake_case names)
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool
	// does. It is provided to the oracle to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// The schema is used for parameter validation and function calling.
	Parameters() map[string]any

	// Call executes the tool with structured arguments. Arguments are parsed
	// from JSON and validated against the tool's schema before invocation.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}

// Definition converts a tool into its oracle-facing declaration.
func Definition(t Tool) oracle.ToolDefinition {
	return oracle.ToolDefinition{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Parameters(),
	}
}

// Definitions converts a tool set into oracle-facing declarations, in order.
func Definitions(tools ...Tool) []oracle.ToolDefinition {
	defs := make([]oracle.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		defs = append(defs, Definition(t))
	}
	return defs
}

// Registry indexes tools by name for call dispatch.
type Registry struct {
	tools map[string]Tool
	order []Tool
}

// NewRegistry builds a registry from the given tools. Later tools with a
// duplicate name replace earlier ones.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t)
		}
		r.tools[t.Name()] = t
	}
	return r
}

// Get returns the named tool, or nil when unknown.
func (r *Registry) Get(name string) Tool { return r.tools[name] }

// Definitions returns the oracle declarations for every registered tool in
// registration order.
func (r *Registry) Definitions() []oracle.ToolDefinition {
	return Definitions(r.order...)
}

// Dispatch validates that the call names a registered tool and executes it.
func (r *Registry) Dispatch(ctx context.Context, call core.ToolCall) (any, error) {
	t := r.Get(call.Name)
	if t == nil {
		return nil, NewToolError(call.Name, "unknown tool", "UNKNOWN_TOOL")
	}
	return t.Call(ctx, call.Args)
}

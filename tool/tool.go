// Package tool implements the function / tool calling subsystem that lets
// agents invoke structured capabilities (APIs, computations, side-effects)
// with schema-described arguments and consistent error handling. It also
// provides a factory that turns declarative JSON tool definitions into
// callable tools, optionally forwarding invocations to a remote HTTP
// callback endpoint.
package tool

import (
	"context"
	"fmt"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with agents to enable function calling, allowing a
// model to perform actions beyond text generation such as API calls,
// calculations or database queries.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define a proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be safe for concurrent use
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should be descriptive and follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// It is provided to the LLM to help it decide when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool with the supplied arguments. Arguments keep their
	// insertion order so tools that echo or forward them stay deterministic.
	Call(ctx context.Context, args *Arguments) (any, error)
}

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

// InvalidDefinitionError reports a declarative tool definition that cannot
// produce a callable tool (for example, a missing name).
type InvalidDefinitionError struct {
	Reason string `json:"reason"`
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid tool definition: %s", e.Reason)
}

// InvalidJSONError reports malformed JSON text passed to the batch factory.
type InvalidJSONError struct {
	Err error
}

func (e *InvalidJSONError) Error() string {
	return fmt.Sprintf("invalid JSON tool definitions: %v", e.Err)
}

func (e *InvalidJSONError) Unwrap() error { return e.Err }

// Package tool implements the function calling subsystem that lets agents
// invoke structured capabilities with schema validated arguments, consistent
// error handling and rich metadata for LLM guidance.
package tool

import (
	"fmt"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/schema"
)

// Error codes attached to ToolError for categorization.
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeExecutionError  = "EXECUTION_ERROR"
	CodeTimeout         = "TIMEOUT"
)

// Tool defines the interface for extending agent capabilities with external functions.
//
// Tools are registered with model agents to enable function calling, allowing
// agents to perform actions beyond text generation such as searches, user
// interaction, or delegating to other agents.
//
// All tools receive a ToolContext for session state, memory, and artifact
// access, plus the function call ID correlating the model request with the
// tool execution.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Handle errors gracefully
//   - Be thread-safe if used concurrently
type Tool interface {
	// Name returns the unique identifier for this tool.
	// Names should follow function naming conventions (snake_case recommended).
	Name() string

	// Description returns a human-readable description of what this tool does.
	// The description is provided to the LLM to help it decide when to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	// This schema is used for argument validation and LLM function calling.
	Parameters() map[string]any

	// Call executes the tool with structured arguments and ToolContext.
	// Arguments are parsed from JSON and validated against the tool's schema.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// ValidationError reports schema validation failures for tool arguments.
type ValidationError = schema.ValidationError

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

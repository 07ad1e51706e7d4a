// Package tool implements the capability subsystem that lets specialists
// invoke structured functions (web search, market data) with schema validated
// arguments and consistent error handling. The closed set of tool kinds is
// resolved through Registry; unknown kinds are rejected at team build time.
package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/agentfleet/internal/util"
)

// Tool defines the interface for extending specialist capabilities with
// external functions.
//
// Tool implementations should:
//   - Provide clear, descriptive names and descriptions
//   - Define proper JSON schema for parameters
//   - Be safe for concurrent use; one instance may serve many sessions
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description of what this tool
	// does, provided to the model to guide tool selection.
	Description() string

	// Parameters returns a JSON schema describing the expected input format.
	Parameters() map[string]any

	// Call executes the tool. Arguments are parsed from JSON and validated
	// against the tool's schema before execution.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError represents parameter validation errors with detailed
// information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`    // Name of the tool that failed
	Message string `json:"message"` // Error message
	Code    string `json:"code"`    // Error code for categorization
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// validateArgs runs schema validation and wraps failures uniformly.
func validateArgs(name string, args map[string]any, schema map[string]any) error {
	if err := util.ValidateParameters(args, schema); err != nil {
		return &ToolError{
			Tool:    name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    "VALIDATION_ERROR",
		}
	}
	return nil
}

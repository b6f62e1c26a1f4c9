package tool

import (
	"context"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/schema"
)

// CodeExecutor runs code snippets and returns their combined output.
// Implementations decide the sandboxing strategy; scripted executors serve
// tests and offline runs.
type CodeExecutor interface {
	Execute(ctx context.Context, code string) (string, error)
}

// CodeExecutorFunc adapts a plain function into a CodeExecutor.
type CodeExecutorFunc func(ctx context.Context, code string) (string, error)

// Execute implements CodeExecutor.
func (f CodeExecutorFunc) Execute(ctx context.Context, code string) (string, error) {
	return f(ctx, code)
}

// CodeExecutionTool lets a model agent run code, typically to execute unit
// tests against generated or fixed code during a review.
type CodeExecutionTool struct {
	executor CodeExecutor
}

// NewCodeExecutionTool creates a code execution tool backed by the given executor.
func NewCodeExecutionTool(executor CodeExecutor) *CodeExecutionTool {
	return &CodeExecutionTool{executor: executor}
}

// Name returns the tool identifier.
func (t *CodeExecutionTool) Name() string { return "execute_code" }

// Description returns the tool description.
func (t *CodeExecutionTool) Description() string {
	return "Execute a code snippet and return its output. Use this to run unit tests " +
		"or verify that code behaves as expected."
}

// Parameters returns the JSON schema for tool arguments.
func (t *CodeExecutionTool) Parameters() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"code": schema.String("The code to execute"),
	}, "code")
}

// Call runs the snippet through the executor. Execution output is returned
// even when the snippet itself fails, so the model can inspect failures.
func (t *CodeExecutionTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	code, ok := args["code"].(string)
	if !ok || code == "" {
		return nil, NewToolError(t.Name(), "code parameter is required", CodeValidationError)
	}

	output, err := t.executor.Execute(toolCtx.Context(), code)
	if err != nil {
		return map[string]any{
			"success": false,
			"output":  output,
			"error":   err.Error(),
		}, nil
	}

	return map[string]any{
		"success": true,
		"output":  output,
	}, nil
}

package model

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hupe1980/leadmesh/core"
)

// ToolCallFunction carries the function name and serialized arguments of a
// tool call surfaced by a model provider.
type ToolCallFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"` // JSON string of arguments
}

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the model.
// Parameters is a JSON Schema object (draft agnostic, minimal subset expected).
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// Request captures the normalized model input produced by a leaf agent.
// When OutputSchema is set the backend must steer the model to emit a JSON
// value of that shape; validating the result against the declared schema
// remains the agent's responsibility.
type Request struct {
	Instructions string           `json:"instructions"` // System instructions for the model
	Contents     []core.Content   `json:"contents"`     // Higher-level content converted to provider messages
	Tools        []ToolDefinition `json:"tools,omitempty"`
	OutputSchema map[string]any   `json:"output_schema,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the completed output of one model call.
type Response struct {
	ID           string       `json:"id"`
	Content      core.Content `json:"content"`
	FinishReason string       `json:"finish_reason"` // "stop", "length", "tool_calls", etc.
	Usage        *TokenUsage  `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface required by agents to drive generation.
// Generate is synchronous from the agent's view: it blocks until the
// provider returns a completed response or fails.
type Model interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// SchemaDirective renders the instruction suffix backends append when a
// request declares an output schema.
func SchemaDirective(outputSchema map[string]any) string {
	data, err := json.Marshal(outputSchema)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("\n\nRespond ONLY with a single JSON value conforming exactly to this JSON Schema, with no surrounding prose or code fences:\n%s", string(data))
}

// MockModel is a lightweight in-memory Model useful for tests & examples.
type MockModel struct {
	info      Info
	responses map[string]string
}

// NewMockModel constructs a MockModel with basic tool support enabled.
func NewMockModel(name, provider string) *MockModel {
	return &MockModel{
		info: Info{
			Name:          name,
			Provider:      provider,
			SupportsTools: true,
		},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockModel) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Generate implements Model; replies with the canned completion registered
// for the last user text, or an echo when none is registered.
func (m *MockModel) Generate(ctx context.Context, req Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var inputText string
	if len(req.Contents) > 0 {
		inputText = req.Contents[len(req.Contents)-1].Text()
	}

	full := m.responses[inputText]
	if full == "" {
		full = fmt.Sprintf("Mock response to: %s", inputText)
	}

	return &Response{
		Content:      core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: full}}},
		FinishReason: "stop",
	}, nil
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }

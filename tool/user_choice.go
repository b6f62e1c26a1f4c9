package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/schema"
)

// ChoiceProvider supplies the answer to a user choice request. Implementations
// range from interactive terminal prompts to scripted providers in tests.
type ChoiceProvider interface {
	// Choose presents the question and options to the user and returns the
	// selected option. It blocks until an answer is available or the context
	// is cancelled.
	Choose(ctx context.Context, question string, options []string) (string, error)
}

// ChoiceProviderFunc adapts a plain function into a ChoiceProvider.
type ChoiceProviderFunc func(ctx context.Context, question string, options []string) (string, error)

// Choose implements ChoiceProvider.
func (f ChoiceProviderFunc) Choose(ctx context.Context, question string, options []string) (string, error) {
	return f(ctx, question, options)
}

// UserChoiceTool pauses the agent and asks the human operator to pick one of
// a fixed set of options. The model supplies the question, the options and a
// free-form context tag that downstream hooks use to interpret the answer.
//
// The call blocks the run until the provider answers. An optional timeout
// bounds the wait; without one the tool waits for as long as the run context
// lives.
type UserChoiceTool struct {
	provider ChoiceProvider
	timeout  time.Duration
}

// UserChoiceOption customizes a UserChoiceTool.
type UserChoiceOption func(t *UserChoiceTool)

// WithChoiceTimeout bounds how long the tool waits for an answer. When the
// timeout elapses the call fails with a TIMEOUT tool error.
func WithChoiceTimeout(d time.Duration) UserChoiceOption {
	return func(t *UserChoiceTool) { t.timeout = d }
}

// NewUserChoiceTool creates a user choice tool backed by the given provider.
func NewUserChoiceTool(provider ChoiceProvider, optFns ...UserChoiceOption) *UserChoiceTool {
	t := &UserChoiceTool{provider: provider}
	for _, fn := range optFns {
		fn(t)
	}

	return t
}

// Name returns the tool identifier.
func (t *UserChoiceTool) Name() string { return "get_user_choice" }

// Description returns the tool description.
func (t *UserChoiceTool) Description() string {
	return "Ask the user to choose one option from a list. Use this whenever you need " +
		"explicit user input or confirmation before proceeding. Pass a context tag " +
		"describing what the answer will be used for."
}

// Parameters returns the JSON schema for tool arguments.
func (t *UserChoiceTool) Parameters() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"question": schema.String("The question to present to the user"),
		"options":  schema.StringArray("The options the user may choose from"),
		"context":  schema.String("Tag describing what the choice is for, e.g. set_k_for_patterns"),
	}, "question", "options", "context")
}

// Call blocks until the provider returns the selected option. The selection
// is returned verbatim so hooks can match it against the offered options.
func (t *UserChoiceTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	question, _ := args["question"].(string)
	rawOptions, _ := args["options"].([]any)

	options := make([]string, 0, len(rawOptions))
	for _, o := range rawOptions {
		s, ok := o.(string)
		if !ok {
			return nil, NewToolError(t.Name(), fmt.Sprintf("option %v is not a string", o), CodeValidationError)
		}

		options = append(options, s)
	}

	if len(options) == 0 {
		return nil, NewToolError(t.Name(), "at least one option is required", CodeValidationError)
	}

	ctx := toolCtx.Context()
	if t.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	toolCtx.Logger().Info("tool.user_choice.waiting",
		"question", question,
		"options", len(options),
		"context", args["context"],
	)

	answer, err := t.provider.Choose(ctx, question, options)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, NewToolError(t.Name(), "timed out waiting for user choice", CodeTimeout)
		}

		return nil, err
	}

	return answer, nil
}

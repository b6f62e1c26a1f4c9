package tool

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/logging"
	"github.com/hupe1980/leadmesh/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newToolContext(ctx context.Context) (*core.ToolContext, chan core.Event) {
	emit := make(chan core.Event, 32)
	sess := core.NewSession("tool-session")

	rc := core.NewRunContext(
		ctx,
		"tool-session", "run-1",
		core.AgentInfo{Name: "caller", Type: "model"},
		core.Content{},
		emit, nil,
		sess,
		nil, nil, nil,
		logging.NoOpLogger{},
	)

	return core.NewToolContext(rc, "call-1"), emit
}

func TestFunctionTool_Success(t *testing.T) {
	echo := NewFunctionTool(
		"echo",
		"Echo the provided message",
		schema.Object(map[string]*schema.Property{
			"message": schema.String("Message to echo"),
		}, "message"),
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["message"], nil
		},
	)

	tc, _ := newToolContext(context.Background())

	result, err := echo.Call(tc, map[string]any{"message": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	tool := NewFunctionTool(
		"adder",
		"Add two numbers",
		schema.Object(map[string]*schema.Property{
			"a": schema.Number("First operand"),
			"b": schema.Number("Second operand"),
		}, "a", "b"),
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	tc, _ := newToolContext(context.Background())

	_, err := tool.Call(tc, map[string]any{"a": 1.0})
	require.Error(t, err)

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidationError, toolErr.Code)
	assert.Equal(t, "adder", toolErr.Tool)
}

func TestFunctionTool_ExecutionErrorWrapping(t *testing.T) {
	custom := NewToolError("flaky", "rate limited", CodeTimeout)

	flaky := NewFunctionTool("flaky", "Always fails", nil,
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, custom
		},
	)

	plain := NewFunctionTool("plain", "Fails with a plain error", nil,
		func(tc *core.ToolContext, args map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	)

	tc, _ := newToolContext(context.Background())

	_, err := flaky.Call(tc, nil)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeTimeout, toolErr.Code, "custom tool errors pass through unchanged")

	_, err = plain.Call(tc, nil)
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecutionError, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestWebSearchTool(t *testing.T) {
	provider := SearchProviderFunc(func(ctx context.Context, query string, maxResults int) ([]SearchHit, error) {
		assert.Equal(t, "fintech startups Germany", query)
		assert.Equal(t, 3, maxResults)
		return []SearchHit{{Title: "Acme", URL: "https://acme.example", Snippet: "fintech"}}, nil
	})

	search := NewWebSearchTool(provider)
	tc, _ := newToolContext(context.Background())

	result, err := search.Call(tc, map[string]any{
		"query":       "fintech startups Germany",
		"max_results": 3.0,
	})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, 1, payload["count"])
	hits := payload["results"].([]SearchHit)
	assert.Equal(t, "Acme", hits[0].Title)
}

func TestWebSearchTool_RequiresQuery(t *testing.T) {
	search := NewWebSearchTool(SearchProviderFunc(func(ctx context.Context, q string, n int) ([]SearchHit, error) {
		t.Fatal("provider should not be called")
		return nil, nil
	}))

	tc, _ := newToolContext(context.Background())

	_, err := search.Call(tc, map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidationError, toolErr.Code)
}

func TestCodeExecutionTool(t *testing.T) {
	executor := CodeExecutorFunc(func(ctx context.Context, code string) (string, error) {
		return "2 passed", nil
	})

	exec := NewCodeExecutionTool(executor)
	tc, _ := newToolContext(context.Background())

	result, err := exec.Call(tc, map[string]any{"code": "assert add(1, 2) == 3"})
	require.NoError(t, err)

	payload := result.(map[string]any)
	assert.Equal(t, true, payload["success"])
	assert.Equal(t, "2 passed", payload["output"])
}

func TestCodeExecutionTool_FailureIsData(t *testing.T) {
	executor := CodeExecutorFunc(func(ctx context.Context, code string) (string, error) {
		return "Traceback: AssertionError", errors.New("exit status 1")
	})

	exec := NewCodeExecutionTool(executor)
	tc, _ := newToolContext(context.Background())

	result, err := exec.Call(tc, map[string]any{"code": "assert False"})
	require.NoError(t, err, "execution failure is returned as data, not as a tool error")

	payload := result.(map[string]any)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["output"], "AssertionError")
	assert.Equal(t, "exit status 1", payload["error"])
}

func TestUserChoiceTool(t *testing.T) {
	provider := ChoiceProviderFunc(func(ctx context.Context, question string, options []string) (string, error) {
		assert.Equal(t, "How many patterns?", question)
		assert.Equal(t, []string{"3", "5", "10"}, options)
		return "5", nil
	})

	choice := NewUserChoiceTool(provider)
	tc, _ := newToolContext(context.Background())

	result, err := choice.Call(tc, map[string]any{
		"question": "How many patterns?",
		"options":  []any{"3", "5", "10"},
		"context":  "set_k_for_patterns",
	})
	require.NoError(t, err)
	assert.Equal(t, "5", result)
}

func TestUserChoiceTool_RequiresOptions(t *testing.T) {
	choice := NewUserChoiceTool(ChoiceProviderFunc(func(ctx context.Context, q string, o []string) (string, error) {
		t.Fatal("provider should not be called")
		return "", nil
	}))

	tc, _ := newToolContext(context.Background())

	_, err := choice.Call(tc, map[string]any{"question": "pick", "options": []any{}})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidationError, toolErr.Code)
}

func TestUserChoiceTool_Timeout(t *testing.T) {
	blocked := ChoiceProviderFunc(func(ctx context.Context, q string, o []string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	choice := NewUserChoiceTool(blocked, WithChoiceTimeout(10*time.Millisecond))
	tc, _ := newToolContext(context.Background())

	_, err := choice.Call(tc, map[string]any{"question": "pick", "options": []any{"a"}})

	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeTimeout, toolErr.Code)
}

// choiceAgent is a minimal core.Agent for exercising AgentTool without
// depending on the agent package.
type choiceAgent struct {
	name  string
	texts []string
	state map[string]any
}

func (a *choiceAgent) Name() string                     { return a.name }
func (a *choiceAgent) Description() string              { return "test agent" }
func (a *choiceAgent) SetSubAgents(...core.Agent) error { return nil }
func (a *choiceAgent) SubAgents() []core.Agent          { return nil }
func (a *choiceAgent) Parent() core.Agent               { return nil }
func (a *choiceAgent) FindAgent(name string) core.Agent { return nil }

func (a *choiceAgent) Run(runCtx *core.RunContext) error {
	for k, v := range a.state {
		runCtx.SetState(k, v)
	}
	for _, text := range a.texts {
		if err := runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, a.name, text)); err != nil {
			return err
		}
		if err := runCtx.WaitForResume(); err != nil {
			return err
		}
	}
	return nil
}

func TestAgentTool_ForwardsEventsAndState(t *testing.T) {
	child := &choiceAgent{
		name:  "pattern_discovery_agent",
		texts: []string{"searching companies", "1. Strong engineering culture"},
		state: map[string]any{"discovered_patterns": "1. Strong engineering culture"},
	}

	agentTool := NewAgentTool(child)
	assert.Equal(t, "pattern_discovery_agent", agentTool.Name())

	tc, emit := newToolContext(context.Background())
	rc := tc.InternalRunContext()

	result, err := agentTool.Call(tc, map[string]any{"request": "find patterns"})
	require.NoError(t, err)
	assert.Equal(t, "1. Strong engineering culture", result, "last non-empty text is the tool result")

	forwarded := 0
	sawDelta := false
	for {
		select {
		case ev := <-emit:
			forwarded++
			if ev.Actions.StateDelta["discovered_patterns"] != nil {
				sawDelta = true
			}
		default:
			assert.Equal(t, 2, forwarded, "child events must surface on the caller's stream")
			assert.True(t, sawDelta, "child state deltas must ride the forwarded events")

			v, ok := rc.Session.GetState("discovered_patterns")
			require.True(t, ok)
			assert.Equal(t, "1. Strong engineering culture", v)
			return
		}
	}
}

func TestAgentTool_ChildFailure(t *testing.T) {
	failing := &failingAgent{}

	tc, _ := newToolContext(context.Background())

	_, err := NewAgentTool(failing).Call(tc, map[string]any{"request": "go"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}

type failingAgent struct{ choiceAgent }

func (a *failingAgent) Name() string { return "broken" }

func (a *failingAgent) Run(*core.RunContext) error { return errors.New("model unavailable") }

package tool

import (
	"fmt"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/schema"
)

// AgentTool exposes another agent as a callable tool. The calling model
// delegates a request, the wrapped agent runs to completion against the same
// session, and its final text response becomes the tool result.
//
// State written by the wrapped agent is visible to the caller afterwards
// since both operate on the same working session.
type AgentTool struct {
	agent core.Agent
}

// NewAgentTool wraps the given agent as a tool. The tool inherits the agent's
// name and description so the model sees it like any other function.
func NewAgentTool(agent core.Agent) *AgentTool {
	return &AgentTool{agent: agent}
}

// Name returns the wrapped agent's name.
func (t *AgentTool) Name() string { return t.agent.Name() }

// Description returns the wrapped agent's description.
func (t *AgentTool) Description() string { return t.agent.Description() }

// Parameters returns the JSON schema for tool arguments.
func (t *AgentTool) Parameters() map[string]any {
	return schema.Object(map[string]*schema.Property{
		"request": schema.String("The request to forward to the agent"),
	}, "request")
}

// Call runs the wrapped agent synchronously and returns its final text
// response. Events emitted by the agent are forwarded to the caller's event
// stream so their state deltas persist like any other step; the last
// non-empty text also surfaces as the tool result.
func (t *AgentTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	request, _ := args["request"].(string)

	runCtx := toolCtx.InternalRunContext()

	emit := make(chan core.Event, 16)
	resume := make(chan struct{}, 16)

	childCtx := runCtx.NewChildContext(emit, resume, runCtx.Branch)
	childCtx.Agent = core.AgentInfo{Name: t.agent.Name(), Type: "agent_tool"}
	if request != "" {
		childCtx.UserContent = *core.NewTextContent("user", request)
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(emit)
		errCh <- t.agent.Run(childCtx)
	}()

	var finalText string
	for ev := range emit {
		if !ev.IsError() && ev.Content != nil {
			if text := ev.Content.Text(); text != "" {
				finalText = text
			}
		}

		if err := runCtx.EmitEvent(ev); err != nil {
			return nil, err
		}
		if err := runCtx.WaitForResume(); err != nil {
			return nil, err
		}

		// The child is acknowledged only once its event has been
		// forwarded and persisted upstream.
		select {
		case resume <- struct{}{}:
		default:
		}
	}

	if err := <-errCh; err != nil {
		return nil, fmt.Errorf("agent %q failed: %w", t.agent.Name(), err)
	}

	toolCtx.Logger().Debug("tool.agent.done", "agent", t.agent.Name())

	return finalText, nil
}

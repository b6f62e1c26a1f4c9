// Package testutil provides deterministic model doubles and run helpers for
// agent tests.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/model"
	"github.com/hupe1980/leadmesh/runner"
	"github.com/hupe1980/leadmesh/session"
)

// ScriptedModel replays a fixed sequence of responses, one per Generate
// call, and records every request it sees. Safe for concurrent use; under
// parallel agents the step order across goroutines is not deterministic, so
// concurrent tests should script order-independent steps.
type ScriptedModel struct {
	mu       sync.Mutex
	name     string
	steps    []core.Content
	next     int
	requests []model.Request
}

// NewScriptedModel creates an empty scripted model.
func NewScriptedModel(name string) *ScriptedModel {
	return &ScriptedModel{name: name}
}

// AddText appends a plain text completion step.
func (m *ScriptedModel) AddText(text string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, *core.NewTextContent("assistant", text))

	return m
}

// AddToolCall appends a step that calls the named tool with raw JSON args.
func (m *ScriptedModel) AddToolCall(id, tool, args string) *ScriptedModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, core.Content{
		Role: "assistant",
		Parts: []core.Part{core.FunctionCallPart{
			FunctionCall: core.FunctionCall{ID: id, Name: tool, Arguments: args},
		}},
	})

	return m
}

// Requests returns a copy of the requests seen so far.
func (m *ScriptedModel) Requests() []model.Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]model.Request(nil), m.requests...)
}

// Generate implements model.Model.
func (m *ScriptedModel) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if m.next >= len(m.steps) {
		return nil, fmt.Errorf("scripted model %s exhausted after %d steps", m.name, len(m.steps))
	}

	content := m.steps[m.next]
	m.next++

	finish := "stop"
	if len(content.Parts) > 0 {
		if _, isCall := content.Parts[0].(core.FunctionCallPart); isCall {
			finish = "tool_calls"
		}
	}

	return &model.Response{
		ID:           core.NewID(),
		Content:      content,
		FinishReason: finish,
	}, nil
}

// Info implements model.Model.
func (m *ScriptedModel) Info() model.Info {
	return model.Info{Name: m.name, Provider: "scripted", SupportsTools: true}
}

// RunResult is the drained outcome of a single run.
type RunResult struct {
	RunID  string
	Events []core.Event
	State  map[string]any
	Err    error
}

// Run drives one run of the agent against a fresh in-memory session seeded
// with the given state, then returns the collected events and the final
// persisted state.
func Run(ctx context.Context, agent core.Agent, seed map[string]any, userText string, optFns ...func(o *runner.Options)) RunResult {
	return RunWithStore(ctx, agent, session.NewInMemoryStore(), "test-session", seed, userText, optFns...)
}

// RunWithStore is Run against a caller-supplied store and session, for tests
// spanning multiple turns.
func RunWithStore(
	ctx context.Context,
	agent core.Agent,
	store core.SessionStore,
	sessionID string,
	seed map[string]any,
	userText string,
	optFns ...func(o *runner.Options),
) RunResult {
	if _, err := store.Get(sessionID); err != nil {
		return RunResult{Err: err}
	}

	if len(seed) > 0 {
		if err := store.ApplyDelta(sessionID, seed); err != nil {
			return RunResult{Err: err}
		}
	}

	r := runner.New(agent, func(o *runner.Options) {
		o.SessionStore = store
		for _, fn := range optFns {
			fn(o)
		}
	})

	content := core.Content{Role: "user"}
	if userText != "" {
		content = *core.NewTextContent("user", userText)
	}

	runID, eventsCh, errorsCh, err := r.Run(ctx, sessionID, content)
	if err != nil {
		return RunResult{Err: err}
	}

	result := RunResult{RunID: runID}
	for ev := range eventsCh {
		result.Events = append(result.Events, ev)
	}
	if err, ok := <-errorsCh; ok && err != nil {
		result.Err = err
	}

	sess, err := store.Get(sessionID)
	if err != nil {
		result.Err = err
		return result
	}
	result.State = sess.State

	return result
}

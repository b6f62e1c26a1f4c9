package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/logging"
)

// scriptAgent is a functional stub for composite agent tests. It declares
// output keys and delegates Run to a test-supplied function.
type scriptAgent struct {
	BaseAgent
	keys []string
	run  func(runCtx *core.RunContext) error
}

func newScriptAgent(name string, keys []string, run func(runCtx *core.RunContext) error) *scriptAgent {
	return &scriptAgent{BaseAgent: NewBaseAgent(name), keys: keys, run: run}
}

func (s *scriptAgent) OutputKeys() []string { return s.keys }

func (s *scriptAgent) Run(runCtx *core.RunContext) error { return s.run(runCtx) }

// emitMessage stages the given state writes and emits one message event,
// the minimal well-formed agent step.
func emitMessage(runCtx *core.RunContext, author, text string, state map[string]any) error {
	for k, v := range state {
		runCtx.SetState(k, v)
	}

	if err := runCtx.EmitEvent(core.NewMessageEvent(runCtx.RunID, author, text)); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}

// newTestContext builds a run context backed by a buffered emit channel and
// no resume gating, so agents run without an external event processor.
func newTestContext(t *testing.T, sess *core.Session) (*core.RunContext, chan core.Event) {
	t.Helper()

	if sess == nil {
		sess = core.NewSession("test-session")
	}

	emit := make(chan core.Event, 256)

	runCtx := core.NewRunContext(
		context.Background(), sess.ID, "test-run",
		core.AgentInfo{Name: "test", Type: "test"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "test input"}}},
		emit, nil, sess, nil, nil, nil, logging.NoOpLogger{},
	)

	return runCtx, emit
}

// drainEvents reads everything currently buffered on the emit channel.
func drainEvents(emit chan core.Event) []core.Event {
	var events []core.Event
	for {
		select {
		case ev := <-emit:
			events = append(events, ev)
		default:
			return events
		}
	}
}

func TestBaseAgent_SetSubAgents(t *testing.T) {
	child := newScriptAgent("child", nil, func(*core.RunContext) error { return nil })
	parent := NewSequentialAgent("parent", child)

	assert.Equal(t, "parent", child.Parent().Name())
	assert.Len(t, parent.SubAgents(), 1)

	// A child cannot be adopted twice.
	other := NewSequentialAgent("other")
	err := other.SetSubAgents(child)
	require.Error(t, err)
}

func TestBaseAgent_FindAgent(t *testing.T) {
	leaf := newScriptAgent("leaf", nil, func(*core.RunContext) error { return nil })
	mid := NewSequentialAgent("mid", leaf)
	root := NewSequentialAgent("root", mid)

	assert.Equal(t, core.Agent(leaf), root.FindAgent("leaf"))
	assert.Nil(t, root.FindAgent("missing"))
}

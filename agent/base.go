// Package agent provides the workflow agent implementations: model-backed
// leaves plus the sequential, parallel, loop, fan-out and consolidation
// coordinators that compose them into pipelines over shared session state.
package agent

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/tool"
)

// BaseAgent bundles shared hierarchy management and identity helpers. Embed
// it in concrete agent implementations and supply a Run method to satisfy
// the core.Agent interface. All exported methods are goroutine-safe unless
// otherwise documented.
type BaseAgent struct {
	name        string
	description string
	mu          sync.Mutex
	parent      core.Agent
	subAgents   []core.Agent
}

// NewBaseAgent constructs a BaseAgent with a generated description
// (customizable via SetDescription).
func NewBaseAgent(name string) BaseAgent {
	return BaseAgent{
		name:        name,
		description: fmt.Sprintf("Agent %s", name),
	}
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// SetDescription updates the agent's description.
func (b *BaseAgent) SetDescription(desc string) { b.description = desc }

// SetSubAgents atomically replaces the child agent set, clearing any previous
// parent links then assigning this agent as the parent of each new child. It
// enforces a single-parent invariant for all managed children.
func (b *BaseAgent) SetSubAgents(children ...core.Agent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, child := range b.subAgents {
		if setter, ok := child.(interface{ setParent(core.Agent) }); ok {
			setter.setParent(nil)
		}
	}
	b.subAgents = nil

	for _, child := range children {
		if p := child.Parent(); p != nil {
			return fmt.Errorf("agent %s already has parent %s", child.Name(), p.Name())
		}
		if setter, ok := child.(interface{ setParent(core.Agent) }); ok {
			// Wrap base agent so it satisfies Agent (Run provided by wrapper)
			setter.setParent(&agentWrapper{b})
		}
		b.subAgents = append(b.subAgents, child)
	}

	return nil
}

// setParent sets the internal parent reference (internal, not concurrency safe externally).
func (b *BaseAgent) setParent(p core.Agent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.parent = p
}

// Parent returns the current parent agent or nil if this agent is root.
func (b *BaseAgent) Parent() core.Agent {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.parent
}

// SubAgents returns a shallow copy of current child agents for safe iteration.
func (b *BaseAgent) SubAgents() []core.Agent {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]core.Agent, len(b.subAgents))
	copy(result, b.subAgents)

	return result
}

// FindAgent performs a depth-first search over the subtree rooted at this
// agent (including itself) returning the first agent whose Name matches.
// Returns nil if no match is found.
func (b *BaseAgent) FindAgent(name string) core.Agent {
	if b.name == name {
		return &agentWrapper{b}
	}

	for _, child := range b.SubAgents() {
		if child.Name() == name {
			return child
		}
		if found := child.FindAgent(name); found != nil {
			return found
		}
	}

	return nil
}

// agentWrapper wraps BaseAgent to satisfy Agent for hierarchy references.
type agentWrapper struct{ *BaseAgent }

// Run executes the agent's behavior within the given context.
func (w *agentWrapper) Run(_ *core.RunContext) error {
	return fmt.Errorf("cannot execute BaseAgent directly - embed it in a concrete agent with Run implementation")
}

// errorCode categorizes an agent failure for error events.
func errorCode(err error) string {
	var (
		schemaErr  *core.SchemaViolationError
		missingErr *core.MissingStateError
		toolErr    *tool.ToolError
	)

	switch {
	case errors.As(err, &schemaErr):
		return core.ErrorCodeSchemaViolation
	case errors.As(err, &missingErr):
		return core.ErrorCodeMissingState
	case errors.As(err, &toolErr):
		return core.ErrorCodeToolFailure
	default:
		return core.ErrorCodeAgentFailure
	}
}

// outputKeys returns the declared output keys of an agent, or nil when the
// agent does not declare any.
func outputKeys(a core.Agent) []string {
	if ok, yes := a.(core.OutputKeyer); yes {
		return ok.OutputKeys()
	}

	return nil
}

func boolPtr(b bool) *bool { return &b }

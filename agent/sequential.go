package agent

import (
	"fmt"

	"github.com/hupe1980/leadmesh/core"
)

// SequentialAgent coordinates the execution of multiple child agents in order.
//
// Children share the same RunContext, so each agent's committed state writes
// become visible to every agent after it. Execution is fail-fast: the first
// child error stops the sequence and agents after the failed one never run.
//
// SequentialAgent is ideal for:
//   - Multi-step pipelines with data dependencies between steps
//   - Workflows requiring a specific execution order
//   - Complex tasks broken into specialized subtasks
type SequentialAgent struct {
	BaseAgent
	children []core.Agent
}

// NewSequentialAgent creates a new sequential execution coordinator. The
// children run in the order given, each observing the state written by its
// predecessors.
func NewSequentialAgent(name string, children ...core.Agent) *SequentialAgent {
	s := &SequentialAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	_ = s.SetSubAgents(children...)

	return s
}

// OutputKeys returns the union of the children's declared output keys.
func (s *SequentialAgent) OutputKeys() []string {
	var keys []string
	for _, child := range s.children {
		keys = append(keys, outputKeys(child)...)
	}

	return keys
}

// Run implements core.Agent. It executes each child agent in order; errors
// stop further processing immediately.
func (s *SequentialAgent) Run(runCtx *core.RunContext) error {
	for _, child := range s.children {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		if err := child.Run(runCtx); err != nil {
			return fmt.Errorf("sequential execution failed at agent %s: %w", child.Name(), err)
		}
	}

	return nil
}

package agent

import (
	"fmt"
	"sync"

	"github.com/hupe1980/leadmesh/core"
)

// ParallelAgent coordinates the concurrent execution of multiple child agents.
//
// Each child runs in its own goroutine with an isolated branch context so
// pending state deltas never mix, while all children share the same session
// and emit stream. Children must declare pairwise-disjoint output keys; the
// group refuses to launch otherwise, since concurrent writers to the same
// key would race.
//
// A failed child does not abort the group. Its failure is recorded as an
// error event and its output keys simply stay absent, so downstream
// consolidation treats the branch's data as not available. The group itself
// always returns nil once all children have finished (unless the run context
// is cancelled).
type ParallelAgent struct {
	BaseAgent
	children []core.Agent
}

// NewParallelAgent creates a new parallel execution coordinator.
func NewParallelAgent(name string, children ...core.Agent) *ParallelAgent {
	p := &ParallelAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
	}
	_ = p.SetSubAgents(children...)

	return p
}

// OutputKeys returns the union of the children's declared output keys.
func (p *ParallelAgent) OutputKeys() []string {
	var keys []string
	for _, child := range p.children {
		keys = append(keys, outputKeys(child)...)
	}

	return keys
}

// checkDisjointOutputKeys verifies that no two children declare the same
// output key. Children that declare no keys are exempt.
func (p *ParallelAgent) checkDisjointOutputKeys() error {
	owners := map[string]string{}
	for _, child := range p.children {
		for _, key := range outputKeys(child) {
			if prev, taken := owners[key]; taken {
				return fmt.Errorf(
					"parallel group %s: agents %s and %s both declare output key %q",
					p.Name(), prev, child.Name(), key,
				)
			}
			owners[key] = child.Name()
		}
	}

	return nil
}

// createBranchCtxForSubAgent clones the parent context and assigns a branch
// path for the child agent ensuring isolation of pending deltas.
func (p *ParallelAgent) createBranchCtxForSubAgent(runCtx *core.RunContext, subAgent core.Agent) *core.RunContext {
	branchSuffix := fmt.Sprintf("%s.%s", p.Name(), subAgent.Name())

	return runCtx.WithBranch(buildBranchPath(runCtx.Branch, branchSuffix))
}

// Run implements core.Agent launching all children concurrently. Child
// failures are converted into error events; the group returns nil after all
// children complete, or the cancellation error if the context ended first.
func (p *ParallelAgent) Run(runCtx *core.RunContext) error {
	if err := p.checkDisjointOutputKeys(); err != nil {
		return err
	}

	var wg sync.WaitGroup

	type childFailure struct {
		agent string
		err   error
	}

	failures := make(chan childFailure, len(p.children))

	for _, child := range p.children {
		wg.Add(1)
		go func(c core.Agent) {
			defer wg.Done()

			branchCtx := p.createBranchCtxForSubAgent(runCtx, c)

			if err := c.Run(branchCtx); err != nil {
				failures <- childFailure{agent: c.Name(), err: err}
			}
		}(child)
	}

	wg.Wait()
	close(failures)

	for f := range failures {
		runCtx.LogWarn("agent.parallel.child_failed",
			"group", p.Name(),
			"agent", f.agent,
			"error", f.err.Error(),
		)

		ev := core.NewErrorEvent(runCtx.RunID, f.agent, errorCode(f.err), f.err)
		if err := runCtx.EmitEvent(ev); err != nil {
			return err
		}
		if err := runCtx.WaitForResume(); err != nil {
			return err
		}
	}

	select {
	case <-runCtx.Done():
		return runCtx.Err()
	default:
	}

	return nil
}

package review

import (
	"fmt"

	"github.com/hupe1980/leadmesh/agent"
	"github.com/hupe1980/leadmesh/core"
)

// fixStatusAgent grades the fix loop's outcome after it terminates. It runs
// no model: it reads the last validation verdict and marks the session as
// resolved or unresolved, so the summary step and the caller can tell an
// early stop from an exhausted loop.
type fixStatusAgent struct {
	agent.BaseAgent
}

func newFixStatusAgent() *fixStatusAgent {
	return &fixStatusAgent{BaseAgent: agent.NewBaseAgent("FixStatus")}
}

// OutputKeys declares the status key.
func (a *fixStatusAgent) OutputKeys() []string { return []string{StateKeyFixStatus} }

// Run implements core.Agent.
func (a *fixStatusAgent) Run(runCtx *core.RunContext) error {
	status := StatusUnresolved
	if fixSucceeded(runCtx.StateSnapshot()) {
		status = StatusResolved
	}

	runCtx.SetState(StateKeyFixStatus, status)
	runCtx.LogInfo("review.fix_status", "agent", a.Name(), "status", status)

	ev := core.NewMessageEvent(runCtx.RunID, a.Name(), fmt.Sprintf("fix attempt %s", status))
	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}

package agent

import (
	"fmt"

	"github.com/hupe1980/leadmesh/core"
)

// LoopAgent repeatedly executes a body of child agents until a termination
// condition is met.
//
// Each iteration runs the body children in order against the shared session,
// so state accumulates across iterations. The loop ends when:
//   - a body agent emits an event carrying the stop signal (the current
//     iteration still completes),
//   - the StopWhen predicate returns true against the state snapshot taken
//     after an iteration,
//   - the maximum iteration count is reached, or
//   - a body agent fails, which propagates as the loop's error.
//
// Reaching the iteration limit without a stop signal is a normal outcome,
// not an error. Callers that need to distinguish exhaustion inspect the
// state the body left behind.
type LoopAgent struct {
	BaseAgent
	children []core.Agent
	maxIters int
	stopWhen func(state map[string]any) bool
}

// LoopOption defines a configuration function for customizing LoopAgent behavior.
type LoopOption func(*LoopAgent)

// WithMaxIters sets the maximum number of iterations for the loop.
func WithMaxIters(n int) LoopOption {
	return func(l *LoopAgent) { l.maxIters = n }
}

// WithStopWhen sets a termination predicate evaluated against the merged
// state snapshot after each completed iteration. Returning true ends the
// loop without error.
func WithStopWhen(pred func(state map[string]any) bool) LoopOption {
	return func(l *LoopAgent) { l.stopWhen = pred }
}

// NewLoopAgent constructs a looping coordinator around a body of child
// agents. Defaults to 100 iterations with no predicate.
func NewLoopAgent(name string, children []core.Agent, opts ...LoopOption) *LoopAgent {
	la := &LoopAgent{
		BaseAgent: NewBaseAgent(name),
		children:  children,
		maxIters:  100,
	}

	for _, o := range opts {
		o(la)
	}

	_ = la.SetSubAgents(children...)

	return la
}

// OutputKeys returns the union of the body children's declared output keys.
func (l *LoopAgent) OutputKeys() []string {
	var keys []string
	for _, child := range l.children {
		keys = append(keys, outputKeys(child)...)
	}

	return keys
}

// Run implements core.Agent performing iterative execution with stop signal
// detection. It returns nil on stop, predicate match or exhaustion; body
// errors propagate immediately.
func (l *LoopAgent) Run(runCtx *core.RunContext) error {
	for i := 0; i < l.maxIters; i++ {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		runCtx.LogDebug("agent.loop.iteration", "loop", l.Name(), "iteration", i+1)

		stopped := false

		for _, child := range l.children {
			childStopped, err := l.runChildWithStopMonitoring(runCtx, child)
			if err != nil {
				return fmt.Errorf("loop iteration %d failed for agent %s: %w", i+1, child.Name(), err)
			}
			if childStopped {
				stopped = true
			}
		}

		if stopped {
			runCtx.LogInfo("agent.loop.stop_signal", "loop", l.Name(), "iteration", i+1)

			return nil
		}

		if l.stopWhen != nil && l.stopWhen(runCtx.StateSnapshot()) {
			runCtx.LogInfo("agent.loop.predicate_met", "loop", l.Name(), "iteration", i+1)

			return nil
		}
	}

	runCtx.LogInfo("agent.loop.exhausted", "loop", l.Name(), "iterations", l.maxIters)

	return nil
}

// runChildWithStopMonitoring wraps child execution routing its emitted events
// through an intercept channel to inspect for stop signals before forwarding
// to the parent context. The child still completes its current step after
// signalling stop; only the loop reacts.
func (l *LoopAgent) runChildWithStopMonitoring(runCtx *core.RunContext, child core.Agent) (bool, error) {
	interceptChan := make(chan core.Event, 10)
	resumeChan := make(chan struct{}, 10)
	childCtx := runCtx.NewChildContext(interceptChan, resumeChan, runCtx.Branch)

	done := make(chan error, 1)

	go func() {
		defer close(done)
		done <- child.Run(childCtx)
	}()

	stopped := false

	for {
		select {
		case event, ok := <-interceptChan:
			if !ok {
				return stopped, <-done
			}

			if event.IsStop() {
				stopped = true
			}

			if err := runCtx.EmitEvent(event); err != nil {
				return stopped, err
			}
			if err := runCtx.WaitForResume(); err != nil {
				return stopped, err
			}

			select {
			case resumeChan <- struct{}{}:
			case <-runCtx.Done():
				return stopped, runCtx.Err()
			}

		case err := <-done:
			return stopped, err

		case <-runCtx.Done():
			return stopped, runCtx.Err()
		}
	}
}

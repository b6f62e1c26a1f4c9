package core

// Agent defines the contract every node in a leadmesh workflow tree
// implements, from single model-backed leaves to composed pipelines.
//
// Agents receive their execution scope through a RunContext, mutate shared
// session state via staged deltas, and communicate results by emitting
// events. Composition (sequential, parallel, loop, fan-out) is expressed as
// agents containing other agents; the runner only ever talks to the root.
//
// Implementations must:
//   - Respect context cancellation
//   - Emit at least one event per completed run
//   - Write only the state keys they declare (see OutputKeyer)
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
}

// OutputKeyer is implemented by agents that declare the session-state keys
// they write. Parallel groups use it to assert that concurrent siblings own
// pairwise-disjoint key sets before launching them.
type OutputKeyer interface {
	OutputKeys() []string
}

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes implementation (e.g. "sequential", "leaf").
type AgentInfo struct{ Name, Type string }

// Package core contains the shared building blocks of the leadmesh
// orchestration engine: the Agent contract, the Session state container and
// its store interface, the Event type flowing between agents and the caller,
// and the RunContext / ToolContext execution scopes.
//
// Data flows strictly through shared session state. An agent reads the state
// it needs, performs its work, and stages mutations on its RunContext; the
// runner applies those mutations when the corresponding event is emitted.
// There is no direct agent-to-agent channel.
package core

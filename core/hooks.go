package core

// ToolOutcome describes a just-finished tool call for AfterTool hooks. Tool
// is the stable tool identifier (never a display name), Args the arguments
// the call was made with, and Response the tool's result. Err is non-nil
// when the call failed.
type ToolOutcome struct {
	Tool     string
	Args     map[string]any
	Response any
	Err      error
}

// Hooks is the dispatch surface for cross-cutting state transitions that are
// not the direct output of a single agent. BeforeRun fires once before the
// root agent executes; AfterTool fires after every tool call completes.
// A nil Hooks on a RunContext disables dispatch.
type Hooks interface {
	BeforeRun(runCtx *RunContext) error
	AfterTool(toolCtx *ToolContext, outcome ToolOutcome) error
}

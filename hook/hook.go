// Package hook provides lifecycle hooks for runs. Hooks allow orchestration
// logic (stage machines, default seeding, derived state) to live outside the
// agents themselves: they observe run starts and tool outcomes and mutate
// session state in response.
package hook

import (
	"context"

	"github.com/hupe1980/leadmesh/core"
)

// Type defines the lifecycle points where hooks can be executed.
//
// Hooks are executed synchronously and can influence execution flow by
// returning errors that terminate the operation.
type Type string

const (
	// TypeBeforeRun is triggered once before the root agent begins execution.
	// Use for seeding default state or refreshing per-run values.
	TypeBeforeRun Type = "before_run"

	// TypeAfterTool is triggered after every tool call completes.
	// Use for interpreting tool results into session state transitions.
	TypeAfterTool Type = "after_tool"
)

// Context carries the information a hook might need. RunContext is always
// set. ToolContext and Outcome are only populated for TypeAfterTool.
type Context struct {
	RunContext  *core.RunContext
	ToolContext *core.ToolContext
	Outcome     *core.ToolOutcome
}

// Hook defines the interface for lifecycle hook implementations.
//
// Implementations should be:
//   - Fast: hooks run synchronously and can block execution
//   - Safe: handle errors gracefully and avoid panics
//   - Idempotent: safe to call multiple times with the same inputs
type Hook interface {
	// Type returns the lifecycle point this hook handles.
	Type() Type

	// Execute performs the hook logic. Returning an error terminates the
	// associated operation.
	Execute(ctx context.Context, hookCtx *Context) error
}

// Func wraps a plain function as a hook implementation.
type Func struct {
	hookType Type
	fn       func(ctx context.Context, hookCtx *Context) error
}

// NewFunc creates a function-based hook for the given lifecycle point.
func NewFunc(hookType Type, fn func(ctx context.Context, hookCtx *Context) error) *Func {
	return &Func{hookType: hookType, fn: fn}
}

// Type returns the lifecycle point this hook handles.
func (f *Func) Type() Type { return f.hookType }

// Execute calls the wrapped function.
func (f *Func) Execute(ctx context.Context, hookCtx *Context) error {
	return f.fn(ctx, hookCtx)
}

// Manager is a registry of hooks that implements core.Hooks. Hooks registered
// for the same type run sequentially in registration order; the first error
// stops dispatch and is propagated.
//
// Registration is not thread-safe. Register all hooks before starting runs;
// dispatch is then safe for concurrent use.
type Manager struct {
	hooks map[Type][]Hook
}

// NewManager creates an empty hook manager.
func NewManager() *Manager {
	return &Manager{hooks: map[Type][]Hook{}}
}

// Register adds a hook for its declared type.
func (m *Manager) Register(h Hook) {
	m.hooks[h.Type()] = append(m.hooks[h.Type()], h)
}

// BeforeRun dispatches all before-run hooks.
func (m *Manager) BeforeRun(runCtx *core.RunContext) error {
	return m.execute(runCtx.Context, TypeBeforeRun, &Context{RunContext: runCtx})
}

// AfterTool dispatches all after-tool hooks with the completed outcome.
func (m *Manager) AfterTool(toolCtx *core.ToolContext, outcome core.ToolOutcome) error {
	return m.execute(toolCtx.Context(), TypeAfterTool, &Context{
		RunContext:  toolCtx.InternalRunContext(),
		ToolContext: toolCtx,
		Outcome:     &outcome,
	})
}

func (m *Manager) execute(ctx context.Context, hookType Type, hookCtx *Context) error {
	for _, h := range m.hooks[hookType] {
		if err := h.Execute(ctx, hookCtx); err != nil {
			return err
		}
	}

	return nil
}

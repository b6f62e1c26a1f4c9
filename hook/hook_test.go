package hook

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHookRunContext() *core.RunContext {
	emit := make(chan core.Event, 4)
	sess := core.NewSession("hook-session")

	return core.NewRunContext(
		context.Background(),
		"hook-session", "run-1",
		core.AgentInfo{Name: "root", Type: "model"},
		core.Content{},
		emit, nil,
		sess,
		nil, nil, nil,
		logging.NoOpLogger{},
	)
}

func TestManager_BeforeRunOrder(t *testing.T) {
	m := NewManager()

	var order []string

	m.Register(NewFunc(TypeBeforeRun, func(ctx context.Context, hookCtx *Context) error {
		order = append(order, "first")
		hookCtx.RunContext.SetState("seeded", true)
		return nil
	}))
	m.Register(NewFunc(TypeBeforeRun, func(ctx context.Context, hookCtx *Context) error {
		order = append(order, "second")
		return nil
	}))

	rc := newHookRunContext()
	require.NoError(t, m.BeforeRun(rc))

	assert.Equal(t, []string{"first", "second"}, order)

	v, ok := rc.GetState("seeded")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestManager_TypeRouting(t *testing.T) {
	m := NewManager()

	var beforeRuns, afterTools int

	m.Register(NewFunc(TypeBeforeRun, func(ctx context.Context, hookCtx *Context) error {
		beforeRuns++
		assert.Nil(t, hookCtx.Outcome)
		return nil
	}))
	m.Register(NewFunc(TypeAfterTool, func(ctx context.Context, hookCtx *Context) error {
		afterTools++
		require.NotNil(t, hookCtx.Outcome)
		assert.Equal(t, "get_user_choice", hookCtx.Outcome.Tool)
		assert.Equal(t, "5", hookCtx.Outcome.Response)
		return nil
	}))

	rc := newHookRunContext()
	require.NoError(t, m.BeforeRun(rc))

	tc := core.NewToolContext(rc, "call-1")
	outcome := core.ToolOutcome{
		Tool:     "get_user_choice",
		Args:     map[string]any{"context": "set_k_for_patterns"},
		Response: "5",
	}
	require.NoError(t, m.AfterTool(tc, outcome))

	assert.Equal(t, 1, beforeRuns)
	assert.Equal(t, 1, afterTools)
}

func TestManager_FirstErrorStopsDispatch(t *testing.T) {
	m := NewManager()

	boom := errors.New("boom")
	secondRan := false

	m.Register(NewFunc(TypeBeforeRun, func(ctx context.Context, hookCtx *Context) error {
		return boom
	}))
	m.Register(NewFunc(TypeBeforeRun, func(ctx context.Context, hookCtx *Context) error {
		secondRan = true
		return nil
	}))

	err := m.BeforeRun(newHookRunContext())
	require.ErrorIs(t, err, boom)
	assert.False(t, secondRan)
}

func TestManager_NoHooksForType(t *testing.T) {
	m := NewManager()

	rc := newHookRunContext()
	require.NoError(t, m.BeforeRun(rc))

	tc := core.NewToolContext(rc, "call-1")
	require.NoError(t, m.AfterTool(tc, core.ToolOutcome{Tool: "web_search"}))
}

package agent

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leadmesh/core"
)

func TestParallelAgent_RunsAllChildren(t *testing.T) {
	var mu sync.Mutex
	ran := map[string]bool{}

	child := func(name string) *scriptAgent {
		return newScriptAgent(name, []string{name + "_out"}, func(runCtx *core.RunContext) error {
			mu.Lock()
			ran[name] = true
			mu.Unlock()
			return emitMessage(runCtx, name, "done", map[string]any{name + "_out": name})
		})
	}

	group := NewParallelAgent("group", child("a"), child("b"), child("c"))

	sess := core.NewSession("test-session")
	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, group.Run(runCtx))

	assert.Len(t, ran, 3)

	// Every child's delta reached the shared session.
	for _, key := range []string{"a_out", "b_out", "c_out"} {
		_, ok := sess.GetState(key)
		assert.True(t, ok, key)
	}
}

func TestParallelAgent_RejectsOverlappingOutputKeys(t *testing.T) {
	group := NewParallelAgent("group",
		newScriptAgent("one", []string{"shared"}, func(*core.RunContext) error { return nil }),
		newScriptAgent("two", []string{"shared"}, func(*core.RunContext) error { return nil }),
	)

	runCtx, _ := newTestContext(t, nil)
	err := group.Run(runCtx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), `output key "shared"`)
}

func TestParallelAgent_ChildFailureDoesNotAbortGroup(t *testing.T) {
	boom := errors.New("boom")

	group := NewParallelAgent("group",
		newScriptAgent("fails", []string{"failed_out"}, func(*core.RunContext) error { return boom }),
		newScriptAgent("succeeds", []string{"ok_out"}, func(runCtx *core.RunContext) error {
			return emitMessage(runCtx, "succeeds", "done", map[string]any{"ok_out": true})
		}),
	)

	sess := core.NewSession("test-session")
	runCtx, emit := newTestContext(t, sess)
	require.NoError(t, group.Run(runCtx))

	// The failed branch contributed no state.
	_, ok := sess.GetState("failed_out")
	assert.False(t, ok)
	_, ok = sess.GetState("ok_out")
	assert.True(t, ok)

	// The failure surfaced as an error event authored by the failing child.
	var errorEvents []core.Event
	for _, ev := range drainEvents(emit) {
		if ev.IsError() {
			errorEvents = append(errorEvents, ev)
		}
	}
	require.Len(t, errorEvents, 1)
	assert.Equal(t, "fails", errorEvents[0].Author)
	assert.Equal(t, core.ErrorCodeAgentFailure, *errorEvents[0].ErrorCode)
}

func TestParallelAgent_ChildFailureCodes(t *testing.T) {
	group := NewParallelAgent("group",
		newScriptAgent("missing", nil, func(*core.RunContext) error {
			return &core.MissingStateError{Key: "absent"}
		}),
	)

	runCtx, emit := newTestContext(t, nil)
	require.NoError(t, group.Run(runCtx))

	events := drainEvents(emit)
	require.Len(t, events, 1)
	assert.Equal(t, core.ErrorCodeMissingState, *events[0].ErrorCode)
}

package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leadmesh/core"
)

func TestInstruction_Static(t *testing.T) {
	instr := NewInstructionFromText("do the thing")
	assert.True(t, instr.IsStatic())

	text, err := instr.Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, "do the thing", text)
}

func TestInstruction_Provider(t *testing.T) {
	instr := NewInstructionFromFunc(func(runCtx *core.RunContext) (string, error) {
		return "from provider", nil
	})
	assert.False(t, instr.IsStatic())

	runCtx, _ := newTestContext(t, nil)
	text, err := instr.Resolve(runCtx)
	require.NoError(t, err)
	assert.Equal(t, "from provider", text)
}

func TestInstruction_ProviderError(t *testing.T) {
	boom := errors.New("boom")
	instr := NewInstructionFromFunc(func(*core.RunContext) (string, error) {
		return "", boom
	})

	runCtx, _ := newTestContext(t, nil)
	_, err := instr.Resolve(runCtx)
	assert.ErrorIs(t, err, boom)
}

package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/internal/testutil"
	"github.com/hupe1980/leadmesh/schema"
	"github.com/hupe1980/leadmesh/tool"
)

func TestModelAgent_FinishStoresOutputKey(t *testing.T) {
	llm := testutil.NewScriptedModel("m").AddText("final answer")

	a := NewModelAgent("writer", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("Answer the question.")
		o.OutputKey = "answer"
	})

	sess := core.NewSession("test-session")
	runCtx, emit := newTestContext(t, sess)
	require.NoError(t, a.Run(runCtx))

	v, ok := sess.GetState("answer")
	require.True(t, ok)
	assert.Equal(t, "final answer", v)

	events := drainEvents(emit)
	require.Len(t, events, 1)
	assert.Equal(t, "final answer", events[0].Content.Text())
	require.NotNil(t, events[0].TurnComplete)
	assert.True(t, *events[0].TurnComplete)
}

func TestModelAgent_InstructionTemplating(t *testing.T) {
	llm := testutil.NewScriptedModel("m").AddText("ok")

	a := NewModelAgent("templated", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("Research {topic} thoroughly.")
		o.RequireState = []string{"topic"}
	})

	sess := core.NewSession("test-session")
	sess.SetState("topic", "fintech")
	runCtx, _ := newTestContext(t, sess)
	require.NoError(t, a.Run(runCtx))

	reqs := llm.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Research fintech thoroughly.", reqs[0].Instructions)
}

func TestModelAgent_MissingRequiredState(t *testing.T) {
	llm := testutil.NewScriptedModel("m").AddText("never reached")

	a := NewModelAgent("templated", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("Research {topic}.")
		o.RequireState = []string{"topic"}
	})

	runCtx, _ := newTestContext(t, nil)
	err := a.Run(runCtx)

	var missing *core.MissingStateError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "topic", missing.Key)
	assert.Empty(t, llm.Requests())
}

func TestModelAgent_ToolCallCycle(t *testing.T) {
	llm := testutil.NewScriptedModel("m").
		AddToolCall("call-1", "echo", `{"message":"hello"}`).
		AddText("echoed: hello")

	echo := tool.NewFunctionTool("echo", "Echo the provided message",
		schema.Object(map[string]*schema.Property{
			"message": schema.String("Message to echo"),
		}, "message"),
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["message"], nil
		},
	)

	a := NewModelAgent("caller", llm, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("Use the echo tool.")
		o.Tools = []tool.Tool{echo}
		o.OutputKey = "result"
	})

	sess := core.NewSession("test-session")
	runCtx, emit := newTestContext(t, sess)
	require.NoError(t, a.Run(runCtx))

	events := drainEvents(emit)
	require.Len(t, events, 3)
	require.Len(t, events[0].GetFunctionCalls(), 1)
	assert.Equal(t, "echo", events[0].GetFunctionCalls()[0].Name)
	assert.Equal(t, "echoed: hello", events[2].Content.Text())

	// Second model request replays the assistant call and the tool result.
	reqs := llm.Requests()
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[1].Contents, 3)

	v, _ := sess.GetState("result")
	assert.Equal(t, "echoed: hello", v)
}

func TestModelAgent_OutputSchemaValidation(t *testing.T) {
	outputSchema := schema.Object(map[string]*schema.Property{
		"name":  schema.String("Name"),
		"valid": schema.Bool("Validity"),
	}, "name", "valid")

	t.Run("valid output is stored parsed", func(t *testing.T) {
		llm := testutil.NewScriptedModel("m").AddText(`{"name":"acme","valid":true}`)

		a := NewModelAgent("validator", llm, func(o *ModelAgentOptions) {
			o.OutputSchema = outputSchema
			o.OutputKey = "verdict"
		})

		sess := core.NewSession("test-session")
		runCtx, _ := newTestContext(t, sess)
		require.NoError(t, a.Run(runCtx))

		v, ok := sess.GetState("verdict")
		require.True(t, ok)
		m, isMap := v.(map[string]any)
		require.True(t, isMap)
		assert.Equal(t, "acme", m["name"])
		assert.Equal(t, true, m["valid"])
	})

	t.Run("violating output fails the agent", func(t *testing.T) {
		llm := testutil.NewScriptedModel("m").AddText(`{"name":"acme"}`)

		a := NewModelAgent("validator", llm, func(o *ModelAgentOptions) {
			o.OutputSchema = outputSchema
			o.OutputKey = "verdict"
		})

		sess := core.NewSession("test-session")
		runCtx, _ := newTestContext(t, sess)
		err := a.Run(runCtx)

		var violation *core.SchemaViolationError
		require.ErrorAs(t, err, &violation)
		assert.Equal(t, "validator", violation.Agent)

		_, ok := sess.GetState("verdict")
		assert.False(t, ok)
	})
}

func TestModelAgent_ExceededToolIterations(t *testing.T) {
	llm := testutil.NewScriptedModel("m").
		AddToolCall("c1", "echo", `{"message":"a"}`).
		AddToolCall("c2", "echo", `{"message":"b"}`)

	echo := tool.NewFunctionTool("echo", "Echo",
		schema.Object(map[string]*schema.Property{"message": schema.String("msg")}, "message"),
		func(_ *core.ToolContext, args map[string]any) (any, error) { return args["message"], nil },
	)

	a := NewModelAgent("caller", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{echo}
		o.MaxToolIterations = 2
	})

	runCtx, _ := newTestContext(t, nil)
	err := a.Run(runCtx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 2 tool iterations")
}

package agent

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/internal/util"
	"github.com/hupe1980/leadmesh/model"
	"github.com/hupe1980/leadmesh/schema"
	"github.com/hupe1980/leadmesh/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	// Instruction is the system prompt. Placeholders of the form {key} are
	// substituted from the merged state snapshot before each model call.
	Instruction Instruction

	// RequireState lists state keys the instruction template cannot run
	// without. A missing required key fails the agent before any model call.
	RequireState []string

	// OutputKey is the session state key the agent's final output is written
	// to. Empty means the output is only emitted, not stored.
	OutputKey string

	// OutputSchema, when set, constrains the final output to a JSON value of
	// this shape. The validated value (not the raw text) is stored under
	// OutputKey. Violations fail the agent without retry.
	OutputSchema map[string]any

	// Tools available for function calling.
	Tools []tool.Tool

	// MaxToolIterations bounds the generate/execute cycle.
	MaxToolIterations int

	// MaxHistoryMessages limits how many conversation events are replayed
	// into the model request. Zero disables history entirely.
	MaxHistoryMessages int
}

// ModelAgent is the leaf agent: one model behind an instruction, an optional
// tool set and an optional structured output contract.
//
// A run renders the instruction against the current state snapshot, drives
// the model through a synchronous generate/execute-tools cycle until the
// model stops calling functions, validates the final output against the
// declared schema if any, stages the result under the output key and emits
// it as a message event.
type ModelAgent struct {
	BaseAgent
	llm                model.Model
	instruction        Instruction
	requireState       []string
	tools              map[string]tool.Tool
	toolOrder          []string
	outputKey          string
	outputSchema       map[string]any
	maxToolIterations  int
	maxHistoryMessages int

	compileOnce    sync.Once
	compiledSchema *schema.Schema
	compileErr     error
}

// NewModelAgent creates a new model-backed agent with sensible defaults:
// no tools, no output key, 8 tool iterations and no history replay.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:       NewInstructionFromText(fmt.Sprintf("You are %s, a helpful AI assistant.", name)),
		MaxToolIterations: 8,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:          NewBaseAgent(name),
		llm:                llm,
		instruction:        opts.Instruction,
		requireState:       opts.RequireState,
		tools:              map[string]tool.Tool{},
		outputKey:          opts.OutputKey,
		outputSchema:       opts.OutputSchema,
		maxToolIterations:  opts.MaxToolIterations,
		maxHistoryMessages: opts.MaxHistoryMessages,
	}

	for _, t := range opts.Tools {
		a.RegisterTool(t)
	}

	return a
}

// RegisterTool adds a tool to the agent's capability set. Registered tools
// become available for the model to call during generation.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	if _, exists := a.tools[t.Name()]; !exists {
		a.toolOrder = append(a.toolOrder, t.Name())
	}
	a.tools[t.Name()] = t
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]

	return exists
}

// OutputKeys declares the single state key this agent writes, if any.
func (a *ModelAgent) OutputKeys() []string {
	if a.outputKey == "" {
		return nil
	}

	return []string{a.outputKey}
}

// ResolveInstructions produces the final system prompt by resolving the
// instruction source and substituting {key} placeholders from the merged
// state snapshot. Required keys missing from state fail resolution.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	text, err := a.instruction.Resolve(runCtx)
	if err != nil {
		return "", fmt.Errorf("instruction provider failed for agent %s: %w", a.Name(), err)
	}

	return util.RenderTemplate(text, runCtx.StateSnapshot(), a.requireState...)
}

// Run implements core.Agent driving the synchronous model/tool cycle.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID)

	if err := a.compileOutputSchema(); err != nil {
		return err
	}

	instructions, err := a.ResolveInstructions(runCtx)
	if err != nil {
		return err
	}

	req := model.Request{
		Instructions: instructions,
		Contents:     a.buildContents(runCtx),
		Tools:        a.toolDefinitions(),
		OutputSchema: a.outputSchema,
	}

	for iter := 0; iter < a.maxToolIterations; iter++ {
		select {
		case <-runCtx.Done():
			return runCtx.Err()
		default:
		}

		resp, err := a.llm.Generate(runCtx.Context, req)
		if err != nil {
			return fmt.Errorf("model call failed for agent %s: %w", a.Name(), err)
		}

		calls := a.functionCalls(resp.Content)
		if len(calls) == 0 {
			return a.finish(runCtx, resp.Content.Text())
		}

		req.Contents = append(req.Contents, resp.Content)

		for _, call := range calls {
			result, callErr := a.executeTool(runCtx, call)
			if callErr != nil {
				return callErr
			}

			fr := core.FunctionResponse{ID: call.ID, Name: call.Name, Response: result}
			req.Contents = append(req.Contents, core.Content{
				Role:  "tool",
				Parts: []core.Part{core.FunctionResponsePart{FunctionResponse: fr}},
			})
		}
	}

	return fmt.Errorf("agent %s exceeded %d tool iterations without a final response", a.Name(), a.maxToolIterations)
}

func (a *ModelAgent) compileOutputSchema() error {
	if a.outputSchema == nil {
		return nil
	}

	a.compileOnce.Do(func() {
		a.compiledSchema, a.compileErr = schema.Compile(a.outputSchema)
	})
	if a.compileErr != nil {
		return fmt.Errorf("invalid output schema for agent %s: %w", a.Name(), a.compileErr)
	}

	return nil
}

// buildContents assembles model input from recent conversation history and
// the current user content. Pipelines that pass everything through the
// instruction end up with a single synthetic user turn so providers always
// receive at least one message.
func (a *ModelAgent) buildContents(runCtx *core.RunContext) []core.Content {
	var contents []core.Content

	if a.maxHistoryMessages > 0 {
		history := runCtx.GetSessionHistory()
		if len(history) > a.maxHistoryMessages {
			history = history[len(history)-a.maxHistoryMessages:]
		}
		for _, ev := range history {
			if ev.Content != nil {
				contents = append(contents, *ev.Content)
			}
		}
	}

	if len(runCtx.UserContent.Parts) > 0 {
		contents = append(contents, runCtx.UserContent)
	}

	if len(contents) == 0 {
		contents = append(contents, *core.NewTextContent("user", "Proceed as instructed."))
	}

	return contents
}

func (a *ModelAgent) toolDefinitions() []model.ToolDefinition {
	if len(a.toolOrder) == 0 {
		return nil
	}

	defs := make([]model.ToolDefinition, 0, len(a.toolOrder))
	for _, name := range a.toolOrder {
		t := a.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	return defs
}

func (a *ModelAgent) functionCalls(content core.Content) []core.FunctionCall {
	var calls []core.FunctionCall
	for _, p := range content.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}

	return calls
}

// executeTool runs one function call: resolves the tool, parses arguments,
// invokes it with a fresh ToolContext, emits call and response events, and
// dispatches the AfterTool hook with the outcome. The hook runs even when
// the call failed; the failure then propagates to the caller.
func (a *ModelAgent) executeTool(runCtx *core.RunContext, call core.FunctionCall) (any, error) {
	if call.ID == "" {
		call.ID = core.NewID()
	}

	t, exists := a.tools[call.Name]
	if !exists {
		return nil, tool.NewToolError(call.Name, "tool not registered with agent "+a.Name(), tool.CodeExecutionError)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return nil, tool.NewToolError(call.Name, fmt.Sprintf("invalid arguments: %v", err), tool.CodeValidationError)
		}
	}

	callEv := core.NewFunctionCallEvent(runCtx.RunID, a.Name(), call.Name, call.Arguments)
	if err := runCtx.EmitEvent(callEv); err != nil {
		return nil, err
	}
	if err := runCtx.WaitForResume(); err != nil {
		return nil, err
	}

	toolCtx := core.NewToolContext(runCtx, call.ID)

	result, callErr := t.Call(toolCtx, args)

	respEv := core.NewFunctionResponseEvent(runCtx.RunID, a.Name(), call.ID, call.Name, result, callErr)
	if err := runCtx.EmitEvent(respEv); err != nil {
		return nil, err
	}
	if err := runCtx.WaitForResume(); err != nil {
		return nil, err
	}

	if runCtx.Hooks != nil {
		outcome := core.ToolOutcome{Tool: t.Name(), Args: args, Response: result, Err: callErr}
		if err := runCtx.Hooks.AfterTool(toolCtx, outcome); err != nil {
			return nil, fmt.Errorf("after-tool hook failed for %s: %w", t.Name(), err)
		}
	}

	if callErr != nil {
		return nil, callErr
	}

	return result, nil
}

// finish validates, stages and emits the agent's final output.
func (a *ModelAgent) finish(runCtx *core.RunContext, text string) error {
	if a.compiledSchema != nil {
		value, err := a.compiledSchema.ValidateJSON(text)
		if err != nil {
			return &core.SchemaViolationError{Agent: a.Name(), Err: err}
		}
		if a.outputKey != "" {
			runCtx.SetState(a.outputKey, value)
		}
	} else if a.outputKey != "" {
		runCtx.SetState(a.outputKey, text)
	}

	ev := core.NewMessageEvent(runCtx.RunID, a.Name(), text)
	ev.TurnComplete = boolPtr(true)

	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	runCtx.LogDebug("agent.run.complete", "agent", a.Name())

	return runCtx.WaitForResume()
}

package core

import "fmt"

// Error codes attached to error events so consumers can categorize failed
// steps without string matching on messages.
const (
	// ErrorCodeToolFailure marks a tool that raised or timed out. The step
	// fails; dependent state keys stay absent so consolidation treats the
	// item's data as not available.
	ErrorCodeToolFailure = "TOOL_FAILURE"

	// ErrorCodeSchemaViolation marks a model output that did not satisfy the
	// agent's declared output schema. Fatal to the step, no implicit retry.
	ErrorCodeSchemaViolation = "SCHEMA_VIOLATION"

	// ErrorCodeMissingState marks an instruction template that required a
	// state key no prior step supplied.
	ErrorCodeMissingState = "MISSING_STATE"

	// ErrorCodeAgentFailure marks any other agent failure surfaced as an
	// error event, e.g. a model call that errored inside a parallel branch.
	ErrorCodeAgentFailure = "AGENT_FAILURE"
)

// SchemaViolationError is returned when an agent declared to emit a schema
// produced a value that does not satisfy it. The violating step fails
// immediately; retries, if any, are the caller's responsibility (the fix
// loop being the one place that re-runs a failed body).
type SchemaViolationError struct {
	Agent string // agent whose output violated its schema
	Err   error  // underlying validation error
}

// Error implements the error interface.
func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("agent %s produced output violating its declared schema: %v", e.Agent, e.Err)
}

// Unwrap returns the underlying validation error.
func (e *SchemaViolationError) Unwrap() error { return e.Err }

// MissingStateError is returned when an instruction template names a
// required state key that is absent. For per-item fan-out pipelines this is
// raised at construction time, before any tool call is made, because the
// pipeline cannot run meaningfully without its item payload.
type MissingStateError struct {
	Key      string // the absent state key
	Template string // template identifier for diagnostics
}

// Error implements the error interface.
func (e *MissingStateError) Error() string {
	return fmt.Sprintf("template %q requires state key %q which is absent", e.Template, e.Key)
}

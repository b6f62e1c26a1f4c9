package core

import (
	"time"

	"github.com/google/uuid"
)

// EventActions encodes side-effects or orchestration signals attached to an
// Event. All fields are optional so absence can be distinguished from zero
// values. The runner interprets StateDelta after persistence; loop
// coordinators watch for Stop.
type EventActions struct {
	StateDelta map[string]any `json:"state_delta,omitempty"`
	Stop       *bool          `json:"stop,omitempty"`
}

// Event is the primary unit of communication between agents, the runner and
// external clients. After emission it should be treated as immutable. It
// captures:
//   - Correlation (RunID, ID, Author)
//   - Conversational content (optional role-based Parts)
//   - Orchestration directives (Actions)
//   - Error metadata for failed steps
//   - High precision UTC timestamp
//
// Content may be nil for control or error-only events.
type Event struct {
	ID           string       `json:"id"`
	RunID        string       `json:"run_id"`
	Author       string       `json:"author"`
	Actions      EventActions `json:"actions"`
	Branch       *string      `json:"branch,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	Content      *Content     `json:"content,omitempty"`
	TurnComplete *bool        `json:"turn_complete,omitempty"`
	ErrorCode    *string      `json:"error_code,omitempty"`
	ErrorMessage *string      `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by 'author' bound to a run.
// Prefer helper constructors for common semantic categories.
func NewEvent(runID, author string) Event {
	return Event{
		ID:        NewID(),
		RunID:     runID,
		Author:    author,
		Timestamp: time.Now().UTC(),
		Actions:   EventActions{},
	}
}

// NewMessageEvent creates a non-user assistant message event with a single text part.
func NewMessageEvent(runID, author, message string) Event {
	e := NewEvent(runID, author)
	e.Content = NewTextContent("assistant", message)
	return e
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(runID, message string) Event {
	e := NewEvent(runID, "user")
	e.Content = NewTextContent("user", message)
	return e
}

// NewUserContentEvent creates a user-authored event with arbitrary Content.
func NewUserContentEvent(runID string, content *Content) Event {
	e := NewEvent(runID, "user")
	e.Content = content
	return e
}

// NewErrorEvent records a failed step without crashing the session. The code
// categorizes the failure (see core error taxonomy); downstream consumers
// treat data dependent on the failed step as absent.
func NewErrorEvent(runID, author, code string, err error) Event {
	e := NewEvent(runID, author)
	e.ErrorCode = &code
	if err != nil {
		msg := err.Error()
		e.ErrorMessage = &msg
	}
	return e
}

// NewFunctionCallEvent represents an agent requesting execution of a named function/tool.
func NewFunctionCallEvent(runID, author, functionName, args string) Event {
	e := NewEvent(runID, author)
	e.Content = &Content{
		Role: "assistant",
		Parts: []Part{
			FunctionCallPart{
				FunctionCall: FunctionCall{Name: functionName, Arguments: args},
			},
		},
	}
	return e
}

// NewFunctionResponseEvent records the completion result (or error) of a
// tool/function invocation. If err is non-nil its message is copied into the
// response.Error field.
func NewFunctionResponseEvent(runID, author, id, functionName string, result interface{}, err error) Event {
	e := NewEvent(runID, author)
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewStopEvent creates an event carrying the loop stop signal. Loop
// coordinators terminate after the iteration in which one is observed.
func NewStopEvent(runID, author string, content *Content) Event {
	stop := true
	e := NewEvent(runID, author)
	e.Actions.Stop = &stop
	e.Content = content
	return e
}

// NewID generates a new unique identifier for events and runs.
func NewID() string { return uuid.NewString() }

// IsError reports whether the event records a failed step.
func (e Event) IsError() bool { return e.ErrorCode != nil }

// IsStop reports whether the event carries the loop stop signal.
func (e Event) IsStop() bool { return e.Actions.Stop != nil && *e.Actions.Stop }

// GetFunctionCalls returns any FunctionCall parts contained within the event
// content preserving their original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within the
// event content preserving their original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse implements the heuristic used by higher layers to decide
// when an assistant turn is complete (no pending tool calls or responses).
func (e Event) IsFinalResponse() bool {
	return len(e.GetFunctionCalls()) == 0 && len(e.GetFunctionResponses()) == 0
}

// UnixSeconds returns the timestamp as fractional seconds since Unix epoch.
func (e Event) UnixSeconds() float64 { return float64(e.Timestamp.UnixNano()) / 1e9 }

package core

import (
	"context"
	"fmt"
	"maps"

	"github.com/hupe1980/leadmesh/logging"
)

// RunContext carries execution state & helpers for an agent run.
// It encapsulates the mutable, per-run execution scope passed to an Agent's
// Run method. It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (SessionID, RunID, Agent info)
//   - Input user Content
//   - Emission / resumption coordination channels
//   - Backing services (session, artifact, memory) for persistence concerns
//   - A working Session snapshot and pending StateDelta to commit
//   - Branch label for hierarchical / fan-out flows
//   - The Hooks dispatch surface for lifecycle callbacks
//
// State mutations performed via SetState accumulate in StateDelta until
// CommitStateDelta or EmitEvent applies them. Cloning produces an isolated
// delta buffer while keeping references to underlying services.
type RunContext struct {
	Context          context.Context
	SessionID, RunID string
	Agent            AgentInfo
	UserContent      Content
	Emit             chan<- Event
	Resume           <-chan struct{}
	SessionStore     SessionStore
	ArtifactStore    ArtifactStore
	MemoryStore      MemoryStore
	Session          *Session
	StateDelta       map[string]any
	Artifacts        []string
	Branch           string
	Hooks            Hooks

	*loggerAdapter
}

// NewRunContext constructs a RunContext with empty state and artifact deltas.
func NewRunContext(
	ctx context.Context,
	sessionID, runID string,
	agent AgentInfo,
	userContent Content,
	emit chan<- Event,
	resume <-chan struct{},
	sess *Session,
	sessionStore SessionStore,
	artifactStore ArtifactStore,
	memoryStore MemoryStore,
	logger logging.Logger,
) *RunContext {
	return &RunContext{
		Context:       ctx,
		SessionID:     sessionID,
		RunID:         runID,
		Agent:         agent,
		UserContent:   userContent,
		Emit:          emit,
		Resume:        resume,
		Session:       sess,
		SessionStore:  sessionStore,
		ArtifactStore: artifactStore,
		MemoryStore:   memoryStore,
		StateDelta:    map[string]any{},
		Artifacts:     []string{},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// GetState returns a staged (delta) value if present, else the persisted session value.
func (rc *RunContext) GetState(k string) (any, bool) {
	if v, ok := rc.StateDelta[k]; ok {
		return v, true
	}

	if rc.Session != nil {
		return rc.Session.GetState(k)
	}

	return nil, false
}

// GetStateString returns the state value rendered as a string, or the empty
// string when absent. Convenience for template-adjacent call sites.
func (rc *RunContext) GetStateString(k string) string {
	v, ok := rc.GetState(k)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// SetState stages a state mutation in the in-memory delta buffer.
func (rc *RunContext) SetState(k string, v any) { rc.StateDelta[k] = v }

// HasState reports whether a key is present in the staged delta or session.
func (rc *RunContext) HasState(k string) bool {
	_, ok := rc.GetState(k)
	return ok
}

// ApplyStateDelta merges all pairs from d into the staged StateDelta.
func (rc *RunContext) ApplyStateDelta(d map[string]any) {
	maps.Copy(rc.StateDelta, d)
}

// StateSnapshot merges the session state with the staged delta into a fresh
// map for template rendering. Staged values win over persisted ones.
func (rc *RunContext) StateSnapshot() map[string]any {
	out := map[string]any{}
	if rc.Session != nil {
		sess := rc.Session.Clone()
		maps.Copy(out, sess.State)
	}
	maps.Copy(out, rc.StateDelta)
	return out
}

// AddArtifact stages an artifact id to be attached to the next emitted event.
func (rc *RunContext) AddArtifact(id string) { rc.Artifacts = append(rc.Artifacts, id) }

// SaveArtifact stores bytes in the ArtifactStore and stages the id for the next emitted event.
func (rc *RunContext) SaveArtifact(id string, data []byte) error {
	if rc.ArtifactStore == nil {
		return fmt.Errorf("artifact store not configured")
	}

	if err := rc.ArtifactStore.Save(rc.SessionID, id, data); err != nil {
		return err
	}

	rc.AddArtifact(id)

	return nil
}

// GetArtifact retrieves previously saved artifact bytes.
func (rc *RunContext) GetArtifact(id string) ([]byte, error) {
	if rc.ArtifactStore == nil {
		return nil, fmt.Errorf("artifact store not configured")
	}

	return rc.ArtifactStore.Get(rc.SessionID, id)
}

// SearchMemory queries the MemoryStore for relevant content.
func (rc *RunContext) SearchMemory(q string, limit int) ([]SearchResult, error) {
	if rc.MemoryStore == nil {
		return []SearchResult{}, nil
	}

	return rc.MemoryStore.Search(rc.SessionID, q, limit)
}

// StoreMemory appends content plus metadata to the MemoryStore.
func (rc *RunContext) StoreMemory(content string, md map[string]any) error {
	if rc.MemoryStore == nil {
		return fmt.Errorf("memory store not configured")
	}
	return rc.MemoryStore.Store(rc.SessionID, content, md)
}

// RefreshSession reloads the session snapshot from the SessionStore.
func (rc *RunContext) RefreshSession() error {
	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}

	s, err := rc.SessionStore.Get(rc.SessionID)
	if err != nil {
		return err
	}

	rc.Session = s

	return nil
}

// CommitStateDelta persists the accumulated StateDelta then clears the buffer.
func (rc *RunContext) CommitStateDelta() error {
	if len(rc.StateDelta) == 0 {
		return nil
	}

	if rc.SessionStore == nil {
		return fmt.Errorf("session store not configured")
	}

	if err := rc.SessionStore.ApplyDelta(rc.SessionID, rc.StateDelta); err != nil {
		return err
	}

	if rc.Session != nil {
		rc.Session.MergeState(rc.StateDelta)
	}

	rc.StateDelta = map[string]any{}

	return nil
}

// GetSessionHistory returns all historical events for the session.
func (rc *RunContext) GetSessionHistory() []Event {
	if rc.Session == nil {
		return []Event{}
	}

	return rc.Session.GetEvents()
}

// GetAgentName returns the logical agent name for this run.
func (rc *RunContext) GetAgentName() string { return rc.Agent.Name }

// GetAgentType returns a categorization label for the agent.
func (rc *RunContext) GetAgentType() string { return rc.Agent.Type }

// Clone returns a shallow copy with deep-copied delta & artifact slices.
func (rc *RunContext) Clone() *RunContext {
	c := &RunContext{
		Context:       rc.Context,
		SessionID:     rc.SessionID,
		RunID:         rc.RunID,
		Agent:         rc.Agent,
		UserContent:   rc.UserContent,
		Emit:          rc.Emit,
		Resume:        rc.Resume,
		SessionStore:  rc.SessionStore,
		ArtifactStore: rc.ArtifactStore,
		MemoryStore:   rc.MemoryStore,
		Session:       rc.Session,
		StateDelta:    map[string]any{},
		Artifacts:     []string{},
		Branch:        rc.Branch,
		Hooks:         rc.Hooks,
		loggerAdapter: rc.loggerAdapter,
	}

	maps.Copy(c.StateDelta, rc.StateDelta)

	c.Artifacts = append(c.Artifacts, rc.Artifacts...)

	return c
}

// WithBranch clones the context and sets the Branch label.
func (rc *RunContext) WithBranch(b string) *RunContext {
	c := rc.Clone()
	c.Branch = b
	return c
}

// NewChildContext derives a context for a nested / child execution path. It
// replaces the Emit & Resume channels, resets pending buffers, and
// optionally sets a branch label if non-empty. Use in composite agents to
// intercept or isolate child output without mutating the parent's transient
// buffers.
func (rc *RunContext) NewChildContext(emit chan<- Event, resume <-chan struct{}, branch string) *RunContext {
	finalBranch := rc.Branch
	if branch != "" {
		finalBranch = branch
	}

	return &RunContext{
		Context:       rc.Context,
		SessionID:     rc.SessionID,
		RunID:         rc.RunID,
		Agent:         rc.Agent,
		UserContent:   rc.UserContent,
		Emit:          emit,
		Resume:        resume,
		SessionStore:  rc.SessionStore,
		ArtifactStore: rc.ArtifactStore,
		MemoryStore:   rc.MemoryStore,
		Session:       rc.Session,
		StateDelta:    map[string]any{}, // fresh buffers
		Artifacts:     []string{},
		Branch:        finalBranch,
		Hooks:         rc.Hooks,
		loggerAdapter: rc.loggerAdapter,
	}
}

// EmitEvent merges pending StateDelta into the event, mirrors it into the
// working session snapshot so later agents in the same run observe it, and
// emits the event. If the context is cancelled before emission it returns
// the cancellation error.
func (rc *RunContext) EmitEvent(ev Event) error {
	if len(rc.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		maps.Copy(ev.Actions.StateDelta, rc.StateDelta)

		if rc.Session != nil {
			rc.Session.MergeState(rc.StateDelta)
		}
	}

	if ev.Branch == nil && rc.Branch != "" {
		b := rc.Branch
		ev.Branch = &b
	}

	select {
	case <-rc.Context.Done():
		return rc.Context.Err()
	case rc.Emit <- ev:
	}

	rc.StateDelta = map[string]any{}
	rc.Artifacts = []string{}

	return nil
}

// WaitForResume blocks until Resume signals or context cancellation.
func (rc *RunContext) WaitForResume() error {
	if rc.Resume == nil {
		return nil
	}

	select {
	case <-rc.Resume:
		return nil
	case <-rc.Context.Done():
		return rc.Context.Err()
	}
}

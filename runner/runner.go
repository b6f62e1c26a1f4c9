// Package runner coordinates agent execution: it resolves the root agent,
// creates run contexts, streams events, applies state deltas and persists
// history.
package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/leadmesh/artifact"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/logging"
	"github.com/hupe1980/leadmesh/memory"
	"github.com/hupe1980/leadmesh/session"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// SessionStore persists sessions, state and event history.
	SessionStore core.SessionStore
	// ArtifactStore persists binary artifacts.
	ArtifactStore core.ArtifactStore
	// MemoryStore provides long-term recall.
	MemoryStore core.MemoryStore
	// Hooks dispatches run lifecycle hooks. Nil disables dispatch.
	Hooks core.Hooks
	// Logger receives structured run diagnostics.
	Logger logging.Logger
}

// Runner drives runs of a single root agent. Each run streams its events
// through the runner, which persists every event and its state delta before
// letting the emitting agent proceed. Public methods are safe for concurrent
// use.
type Runner struct {
	agent core.Agent

	eventBufferSize int

	sessionStore  core.SessionStore
	artifactStore core.ArtifactStore
	memoryStore   core.MemoryStore
	hooks         core.Hooks
	logger        logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides. Defaults use in-memory
// stores and no-op logging.
func New(agent core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		SessionStore:    session.NewInMemoryStore(),
		ArtifactStore:   artifact.NewInMemoryStore(),
		MemoryStore:     memory.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		agent:           agent,
		eventBufferSize: opts.EventBufferSize,
		sessionStore:    opts.SessionStore,
		artifactStore:   opts.ArtifactStore,
		memoryStore:     opts.MemoryStore,
		hooks:           opts.Hooks,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Run starts an asynchronous run against the given session. It returns the
// run ID plus channels carrying the ordered event stream and any terminal
// error. Both channels close when the run finishes.
func (r *Runner) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return "", nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	runID := core.NewID()

	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, r.eventBufferSize)
	resumeCh := make(chan struct{}, 1)

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	agentInfo := core.AgentInfo{Name: r.agent.Name(), Type: "root"}

	runCtx := core.NewRunContext(
		ctx,
		sessionID,
		runID,
		agentInfo,
		userContent,
		agentEmit,
		resumeCh,
		sess,
		r.sessionStore,
		r.artifactStore,
		r.memoryStore,
		r.logger,
	)
	runCtx.Hooks = r.hooks

	if len(userContent.Parts) > 0 {
		userEvent := core.NewUserContentEvent(runID, &userContent)
		if err := r.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
			cancel()
			return "", nil, nil, fmt.Errorf("failed to append user event: %w", err)
		}
		sess.AddEvent(userEvent)
	}

	go func() {
		defer func() {
			close(agentEmit)
			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
		}()

		if err := r.runAgent(runCtx); err != nil {
			select {
			case <-runCtx.Done():
				return
			case errorsCh <- fmt.Errorf("agent execution failed: %w", err):
			}
		}
	}()

	go func() {
		defer func() { close(eventsCh); close(errorsCh) }()

		r.processEvents(runCtx, sessionID, agentEmit, resumeCh, eventsCh, errorsCh)
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel cancels a running run by ID.
func (r *Runner) Cancel(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// runAgent dispatches the before-run hook, commits any state it staged, then
// executes the root agent.
func (r *Runner) runAgent(runCtx *core.RunContext) error {
	if r.hooks != nil {
		if err := r.hooks.BeforeRun(runCtx); err != nil {
			return fmt.Errorf("before-run hook failed: %w", err)
		}
		if err := runCtx.CommitStateDelta(); err != nil {
			return fmt.Errorf("failed to commit before-run state: %w", err)
		}
	}

	return r.agent.Run(runCtx)
}

// processEvents is the single consumer of the agent emit stream. For every
// event it applies the state delta to the store, appends the event to the
// session, forwards it to the client and only then resumes the emitting
// agent. That ordering makes persistence a barrier: an agent never proceeds
// past an emit whose effects are not durable yet.
func (r *Runner) processEvents(
	runCtx *core.RunContext,
	sessionID string,
	agentEmit <-chan core.Event,
	resumeCh chan<- struct{},
	eventsCh chan<- core.Event,
	errorsCh chan<- error,
) {
	for {
		select {
		case <-runCtx.Done():
			return
		case ev, ok := <-agentEmit:
			if !ok {
				return
			}

			if err := r.applyEventActions(sessionID, ev); err != nil {
				select {
				case <-runCtx.Done():
					return
				case errorsCh <- fmt.Errorf("failed to process event actions: %w", err):
				}

				return
			}

			if err := r.sessionStore.AppendEvent(sessionID, ev); err != nil {
				select {
				case <-runCtx.Done():
					return
				case errorsCh <- fmt.Errorf("failed to append event to session: %w", err):
				}

				return
			}

			if runCtx.Session != nil {
				runCtx.Session.AddEvent(ev)
			}

			select {
			case <-runCtx.Done():
				return
			case eventsCh <- ev:
				r.logger.Debug("runner.event.delivered", "event_id", ev.ID, "session_id", sessionID, "author", ev.Author)
			}

			select {
			case <-runCtx.Done():
				return
			case resumeCh <- struct{}{}:
			}
		}
	}
}

// applyEventActions persists the state delta carried by the event.
func (r *Runner) applyEventActions(sessionID string, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(sessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("failed to apply state delta: %w", err)
		}
	}

	return nil
}

// Package leadmesh provides a high-level façade over the runner and service
// abstractions (sessions, artifacts, memory & logging) for building
// model-driven research assistants. Most applications interact with this
// package by:
//  1. Creating a LeadMesh via New() around a root agent (optionally
//     overriding the default in-memory services)
//  2. Invoking the agent asynchronously (Invoke) or synchronously (InvokeSync)
//
// The façade delegates orchestration to runner.Runner while keeping setup
// and usage ergonomics concise. All defaults are safe for local development
// and testing; production deployments typically supply a durable session
// store and a structured logger.
package leadmesh

import (
	"context"

	"github.com/hupe1980/leadmesh/artifact"
	"github.com/hupe1980/leadmesh/core"
	"github.com/hupe1980/leadmesh/logging"
	"github.com/hupe1980/leadmesh/memory"
	"github.com/hupe1980/leadmesh/runner"
	"github.com/hupe1980/leadmesh/session"
)

// Options configures the LeadMesh instance.
type Options struct {
	// EventBufferSize sets the channel buffer size for event processing.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int

	// Stores (defaults to in-memory implementations if not provided)
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore
	MemoryStore   core.MemoryStore

	// Hooks dispatches run lifecycle hooks. Nil disables dispatch.
	Hooks core.Hooks

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// LeadMesh is the high-level façade aggregating the runner and its services.
type LeadMesh struct {
	opts   Options
	runner *runner.Runner
}

// New creates a new LeadMesh instance driving the given root agent. Any
// unset service is initialized with an in-memory implementation.
func New(agent core.Agent, optFns ...func(o *Options)) *LeadMesh {
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

	r := runner.New(agent, func(o *runner.Options) {
		o.EventBufferSize = opts.EventBufferSize
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.MemoryStore = opts.MemoryStore
		o.Hooks = opts.Hooks
		o.Logger = opts.Logger
	})

	return &LeadMesh{opts: opts, runner: r}
}

// Runner exposes the underlying runner for advanced control such as
// cancelling an in-flight run.
func (m *LeadMesh) Runner() *runner.Runner { return m.runner }

// Invoke starts an asynchronous run returning event & error channels.
func (m *LeadMesh) Invoke(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return m.runner.Run(ctx, sessionID, userContent)
}

// InvokeSync is a synchronous helper that drains the async channels,
// accumulates events and returns the run ID.
func (m *LeadMesh) InvokeSync(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, []core.Event, error) {
	runID, eventsCh, errorsCh, err := m.runner.Run(ctx, sessionID, userContent)
	if err != nil {
		return "", nil, err
	}

	var events []core.Event
	for {
		select {
		case <-ctx.Done():
			return runID, events, ctx.Err()

		case event, ok := <-eventsCh:
			if !ok {
				select {
				case err := <-errorsCh:
					return runID, events, err
				default:
					return runID, events, nil
				}
			}
			events = append(events, event)

		case err, ok := <-errorsCh:
			if !ok {
				// Stop selecting on the closed channel; drain events only.
				errorsCh = nil
				continue
			}
			if err != nil {
				return runID, events, err
			}
		}
	}
}

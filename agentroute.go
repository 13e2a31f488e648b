// Package agentroute provides a high-level façade for building
// coordinator/specialist agent systems. Most applications interact with this
// package by:
//  1. Creating specialists (agent.NewModelAgent) and a coordinator
//     (agent.NewCoordinatorAgent) wired together via SetSubAgents
//  2. Creating an App via New() (optionally overriding the in-memory session
//     store or the logger)
//  3. Calling Process for string-in/string-out request handling, or Run for
//     streaming event access
//
// The façade delegates orchestration to runner.Runner while keeping setup
// concise. Defaults are safe for local development and testing.
package agentroute

import (
	"context"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/logging"
	"github.com/agentroute/agentroute/runner"
	"github.com/agentroute/agentroute/session"
)

// Options configures the App instance.
type Options struct {
	// EventBufferSize sets the channel buffer size for event processing.
	EventBufferSize int

	// SessionStore defaults to the in-memory implementation if not provided.
	SessionStore core.SessionStore

	// Logger defaults to NoOpLogger if nil.
	Logger logging.Logger
}

// App is the high-level façade aggregating the runner and its services.
type App struct {
	opts   Options
	runner *runner.Runner
}

// New creates an App around the given root agent with optional overrides.
func New(root core.Agent, optFns ...func(o *Options)) *App {
	opts := Options{
		EventBufferSize: 100,
		SessionStore:    session.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(root, func(o *runner.Options) {
		o.EventBufferSize = opts.EventBufferSize
		o.SessionStore = opts.SessionStore
		o.Logger = opts.Logger
	})

	return &App{opts: opts, runner: r}
}

// Process handles one free-text request end to end and always returns a
// string: the first final response text, "" when the run yields none, or an
// error string with the standard prefix when the run fails.
func (a *App) Process(ctx context.Context, request string) string {
	return a.runner.Process(ctx, request)
}

// Run starts an asynchronous run in the given session and returns the run ID
// plus event and error channels.
func (a *App) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return a.runner.Run(ctx, sessionID, userContent)
}

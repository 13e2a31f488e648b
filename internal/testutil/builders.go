package testutil

import (
	"time"

	"github.com/agentroute/agentroute/core"
)

// EventBuilder provides a fluent helper for constructing events in tests.
// Example:
//
//	ev := NewEventBuilder().Author("agent").Run("run-1").AssistantText("hello").Build()
//
// Chain only the parts you need; sensible defaults are applied.
type EventBuilder struct {
	author        string
	runID         string
	role          string
	textParts     []string
	funcCalls     []core.FunctionCall
	funcResponses []core.FunctionResponse
	partial       *bool
	actions       core.EventActions
}

// NewEventBuilder creates a builder with default author "agent".
func NewEventBuilder() *EventBuilder { return &EventBuilder{author: "agent"} }

// Author sets the author name for the event (chainable).
func (b *EventBuilder) Author(a string) *EventBuilder { b.author = a; return b }

// Run sets the run ID associated with the event (chainable).
func (b *EventBuilder) Run(id string) *EventBuilder { b.runID = id; return b }

// Partial marks the event as a streaming / partial chunk (chainable).
func (b *EventBuilder) Partial(p bool) *EventBuilder { b.partial = &p; return b }

// UserText appends a user role text part (chainable).
func (b *EventBuilder) UserText(t string) *EventBuilder {
	b.role = "user"
	b.textParts = append(b.textParts, t)
	return b
}

// AssistantText appends an assistant role text part (chainable).
func (b *EventBuilder) AssistantText(t string) *EventBuilder {
	b.role = "assistant"
	b.textParts = append(b.textParts, t)
	return b
}

// ToolText appends a tool role text part (chainable).
func (b *EventBuilder) ToolText(t string) *EventBuilder {
	b.role = "tool"
	b.textParts = append(b.textParts, t)
	return b
}

// FunctionCall appends a function call part with assistant role (chainable).
func (b *EventBuilder) FunctionCall(id, name, args string) *EventBuilder {
	b.role = "assistant"
	b.funcCalls = append(b.funcCalls, core.FunctionCall{ID: id, Name: name, Arguments: args})
	return b
}

// FunctionResponse appends a function response part with tool role (chainable).
func (b *EventBuilder) FunctionResponse(id, name string, result any) *EventBuilder {
	b.role = "tool"
	b.funcResponses = append(b.funcResponses, core.FunctionResponse{ID: id, Name: name, Response: result})
	return b
}

// DelegateTo sets the delegation action (chainable).
func (b *EventBuilder) DelegateTo(name string) *EventBuilder {
	b.actions.DelegateTo = &name
	return b
}

// StateDelta merges a key/value pair into the event actions (chainable).
func (b *EventBuilder) StateDelta(k string, v any) *EventBuilder {
	if b.actions.StateDelta == nil {
		b.actions.StateDelta = map[string]any{}
	}
	b.actions.StateDelta[k] = v
	return b
}

// Build assembles the event.
func (b *EventBuilder) Build() core.Event {
	ev := core.Event{
		ID:        core.NewID(),
		RunID:     b.runID,
		Author:    b.author,
		Actions:   b.actions,
		Timestamp: time.Now().UTC(),
		Partial:   b.partial,
	}

	var parts []core.Part
	for _, t := range b.textParts {
		parts = append(parts, core.TextPart{Text: t})
	}
	for _, fc := range b.funcCalls {
		parts = append(parts, core.FunctionCallPart{FunctionCall: fc})
	}
	for _, fr := range b.funcResponses {
		parts = append(parts, core.FunctionResponsePart{FunctionResponse: fr})
	}

	if len(parts) > 0 {
		role := b.role
		if role == "" {
			role = "assistant"
		}
		ev.Content = &core.Content{Role: role, Parts: parts}
	}

	return ev
}

// SessionBuilder assembles sessions with preset state and history.
type SessionBuilder struct {
	id     string
	state  map[string]any
	events []core.Event
}

// NewSessionBuilder creates a builder with a generated session id.
func NewSessionBuilder() *SessionBuilder {
	return &SessionBuilder{id: core.NewID(), state: map[string]any{}}
}

// ID overrides the session id (chainable).
func (b *SessionBuilder) ID(id string) *SessionBuilder { b.id = id; return b }

// State sets a state key/value pair (chainable).
func (b *SessionBuilder) State(k string, v any) *SessionBuilder { b.state[k] = v; return b }

// Event appends an event to the history (chainable).
func (b *SessionBuilder) Event(ev core.Event) *SessionBuilder {
	b.events = append(b.events, ev)
	return b
}

// Build assembles the session.
func (b *SessionBuilder) Build() *core.Session {
	sess := core.NewSession(b.id)
	for k, v := range b.state {
		sess.SetState(k, v)
	}
	for _, ev := range b.events {
		sess.AddEvent(ev)
	}
	return sess
}

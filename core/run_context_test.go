package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentroute/agentroute/logging"
)

func newTestRunContext(emit chan Event, resume chan struct{}) *RunContext {
	return NewRunContext(
		context.Background(),
		"session-1",
		"run-1",
		AgentInfo{Name: "Coordinator", Type: "coordinator"},
		NewTextContent("user", "Book me a hotel in Paris."),
		emit,
		resume,
		NewSession("session-1"),
		nil,
		logging.NoOpLogger{},
	)
}

func TestRunContext_RequestText(t *testing.T) {
	rc := newTestRunContext(nil, nil)
	assert.Equal(t, "Book me a hotel in Paris.", rc.RequestText())
}

func TestRunContext_StateDeltaShadowsSession(t *testing.T) {
	rc := newTestRunContext(nil, nil)
	rc.Session.SetState("key", "persisted")

	v, ok := rc.GetState("key")
	require.True(t, ok)
	assert.Equal(t, "persisted", v)

	rc.SetState("key", "staged")
	v, _ = rc.GetState("key")
	assert.Equal(t, "staged", v)
}

func TestRunContext_EmitEventMergesStateDelta(t *testing.T) {
	emit := make(chan Event, 1)
	rc := newTestRunContext(emit, nil)

	rc.SetState("output", "text")

	require.NoError(t, rc.EmitEvent(NewMessageEvent("Coordinator", "done")))

	ev := <-emit
	require.NotNil(t, ev.Actions.StateDelta)
	assert.Equal(t, "text", ev.Actions.StateDelta["output"])
	assert.Empty(t, rc.StateDelta)
}

func TestRunContext_EmitEventCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rc := NewRunContext(ctx, "s", "r", AgentInfo{}, Content{}, make(chan Event), nil, nil, nil, nil)

	err := rc.EmitEvent(NewMessageEvent("agent", "late"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunContext_WaitForResume(t *testing.T) {
	resume := make(chan struct{}, 1)
	rc := newTestRunContext(nil, resume)

	resume <- struct{}{}
	assert.NoError(t, rc.WaitForResume())

	// Nil resume channel returns immediately.
	rc2 := newTestRunContext(nil, nil)
	assert.NoError(t, rc2.WaitForResume())
}

func TestToolContext_ActionsAccumulate(t *testing.T) {
	rc := newTestRunContext(nil, nil)
	tc := NewToolContext(rc, "fc-1")

	tc.SetState("key", "value")
	tc.DelegateTo("Booker")

	ev := NewEvent("run-1", "Coordinator")
	tc.ApplyActions(&ev)

	require.NotNil(t, ev.Actions.DelegateTo)
	assert.Equal(t, "Booker", *ev.Actions.DelegateTo)
	assert.Equal(t, "value", ev.Actions.StateDelta["key"])

	// SetState also stages on the run context for immediate visibility.
	v, ok := rc.GetState("key")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

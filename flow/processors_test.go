package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/internal/testutil"
	"github.com/agentroute/agentroute/logging"
	"github.com/agentroute/agentroute/model"
)

func newProcessorRunContext(sess *core.Session, userText string) *core.RunContext {
	return core.NewRunContext(
		context.Background(),
		"session-1",
		"run-1",
		core.AgentInfo{Name: "Specialist"},
		core.NewTextContent("user", userText),
		nil,
		nil,
		sess,
		nil,
		logging.NoOpLogger{},
	)
}

func TestInstructionsProcessor_RendersSessionState(t *testing.T) {
	sess := testutil.NewSessionBuilder().State("domain", "travel").Build()
	rc := newProcessorRunContext(sess, "hi")

	agent := &testFlowAgent{name: "Specialist", instr: "You handle {{.domain}} requests."}

	req := new(model.Request)
	require.NoError(t, NewInstructionsProcessor().ProcessRequest(rc, req, agent))

	assert.Equal(t, "You handle travel requests.", req.Instructions)
}

func TestContentsProcessor_FallsBackToUserContent(t *testing.T) {
	rc := newProcessorRunContext(core.NewSession("session-1"), "Book me a hotel in Paris.")

	agent := &testFlowAgent{name: "Specialist"}

	req := &model.Request{Instructions: "You are a specialist."}
	require.NoError(t, NewContentsProcessor().ProcessRequest(rc, req, agent))

	require.Len(t, req.Contents, 2)
	assert.Equal(t, "system", req.Contents[0].Role)
	assert.Equal(t, "You are a specialist.", req.Contents[0].Text())
	assert.Equal(t, "user", req.Contents[1].Role)
	assert.Equal(t, "Book me a hotel in Paris.", req.Contents[1].Text())
}

func TestContentsProcessor_TrimsHistory(t *testing.T) {
	sess := core.NewSession("session-1")
	for i := 0; i < 5; i++ {
		sess.AddEvent(testutil.NewEventBuilder().Author("user").UserText("old message").Build())
	}
	sess.AddEvent(testutil.NewEventBuilder().Author("user").UserText("latest message").Build())

	rc := newProcessorRunContext(sess, "latest message")

	agent := &testFlowAgent{name: "Specialist", maxHist: 2}

	req := new(model.Request)
	require.NoError(t, NewContentsProcessor().ProcessRequest(rc, req, agent))

	// System prompt plus the two newest history entries.
	require.Len(t, req.Contents, 3)
	assert.Equal(t, "latest message", req.Contents[2].Text())
}

func TestContentsProcessor_SkipsPartials(t *testing.T) {
	sess := core.NewSession("session-1")
	sess.AddEvent(testutil.NewEventBuilder().Author("user").UserText("question").Build())
	sess.AddEvent(testutil.NewEventBuilder().AssistantText("chu").Partial(true).Build())
	sess.AddEvent(testutil.NewEventBuilder().AssistantText("chunked answer").Build())

	rc := newProcessorRunContext(sess, "question")

	req := new(model.Request)
	require.NoError(t, NewContentsProcessor().ProcessRequest(rc, req, &testFlowAgent{name: "Specialist"}))

	require.Len(t, req.Contents, 3)
	assert.Equal(t, "chunked answer", req.Contents[2].Text())
}

func TestOutputKeyProcessor_StagesFinalText(t *testing.T) {
	rc := newProcessorRunContext(core.NewSession("session-1"), "hi")

	agent := &testFlowAgent{name: "Specialist", outputKey: "answer"}

	resp := &model.Response{Content: core.NewTextContent("assistant", "the answer")}
	require.NoError(t, NewOutputKeyProcessor().ProcessResponse(rc, resp, agent))

	v, ok := rc.GetState("answer")
	require.True(t, ok)
	assert.Equal(t, "the answer", v)
}

func TestOutputKeyProcessor_IgnoresPartialsAndUnsetKey(t *testing.T) {
	rc := newProcessorRunContext(core.NewSession("session-1"), "hi")

	partial := &model.Response{Partial: true, Content: core.NewTextContent("assistant", "chunk")}
	require.NoError(t, NewOutputKeyProcessor().ProcessResponse(rc, partial, &testFlowAgent{name: "S", outputKey: "answer"}))
	assert.Empty(t, rc.StateDelta)

	final := &model.Response{Content: core.NewTextContent("assistant", "text")}
	require.NoError(t, NewOutputKeyProcessor().ProcessResponse(rc, final, &testFlowAgent{name: "S"}))
	assert.Empty(t, rc.StateDelta)
}

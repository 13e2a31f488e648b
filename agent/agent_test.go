package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/logging"
	"github.com/agentroute/agentroute/model"
	"github.com/agentroute/agentroute/tool"
)

var _ core.Agent = (*ModelAgent)(nil)
var _ core.Agent = (*CoordinatorAgent)(nil)

func newLifecycleRunContext() *core.RunContext {
	return core.NewRunContext(
		context.Background(),
		"session-1",
		"run-1",
		core.AgentInfo{Name: "Test"},
		core.NewTextContent("user", "hi"),
		nil,
		nil,
		core.NewSession("session-1"),
		nil,
		logging.NoOpLogger{},
	)
}

func TestBaseAgent_Lifecycle(t *testing.T) {
	base := NewBaseAgent("Test")
	rc := newLifecycleRunContext()

	require.NoError(t, base.Start(rc))
	assert.Error(t, base.Start(rc))

	require.NoError(t, base.Stop(rc))
	assert.Error(t, base.Stop(rc))
}

func TestBaseAgent_Hierarchy(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")

	parent := NewModelAgent("Parent", llm)
	childA := NewModelAgent("ChildA", llm)
	childB := NewModelAgent("ChildB", llm)
	grandchild := NewModelAgent("Grandchild", llm)

	require.NoError(t, childA.SetSubAgents(grandchild))
	require.NoError(t, parent.SetSubAgents(childA, childB))

	subAgents := parent.SubAgents()
	require.Len(t, subAgents, 2)
	assert.Equal(t, "ChildA", subAgents[0].Name())

	assert.Equal(t, "Parent", childA.Parent().Name())

	found := parent.FindAgent("Grandchild")
	require.NotNil(t, found)
	assert.Equal(t, "Grandchild", found.Name())

	assert.Nil(t, parent.FindAgent("Missing"))
}

func TestBaseAgent_SetSubAgentsReplaces(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")

	parent := NewModelAgent("Parent", llm)
	old := NewModelAgent("Old", llm)
	replacement := NewModelAgent("New", llm)

	require.NoError(t, parent.SetSubAgents(old))
	require.NoError(t, parent.SetSubAgents(replacement))

	assert.Nil(t, old.Parent())
	require.Len(t, parent.SubAgents(), 1)
	assert.Equal(t, "New", parent.SubAgents()[0].Name())
}

func TestModelAgent_Defaults(t *testing.T) {
	llm := model.NewMockModel("mock", "mock")
	a := NewModelAgent("Specialist", llm)

	assert.Equal(t, "Specialist", a.GetName())
	assert.Equal(t, "Agent Specialist", a.Description())
	assert.Same(t, llm, a.GetLLM().(*model.MockModel))
	assert.False(t, a.IsStreamingEnabled())
	assert.Equal(t, 20, a.MaxHistoryMessages())
	assert.Empty(t, a.GetOutputKey())

	instructions, err := a.ResolveInstructions(nil)
	require.NoError(t, err)
	assert.Equal(t, "You are Specialist, a helpful AI assistant.", instructions)
}

func TestModelAgent_ToolRegistry(t *testing.T) {
	a := NewModelAgent("Booker", model.NewMockModel("mock", "mock"))

	a.RegisterTool(tool.NewBookingTool())

	assert.True(t, a.HasTool("booking_handler"))
	assert.Equal(t, []string{"booking_handler"}, a.ListTools())

	// GetTools returns a copy; mutating it must not affect the agent.
	tools := a.GetTools()
	delete(tools, "booking_handler")
	assert.True(t, a.HasTool("booking_handler"))
}

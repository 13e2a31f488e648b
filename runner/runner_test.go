package runner

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentroute/agentroute/agent"
	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/delegate"
	"github.com/agentroute/agentroute/model"
	"github.com/agentroute/agentroute/session"
	"github.com/agentroute/agentroute/tool"
)

// newTravelCoordinator wires a coordinator with Booker and Info specialists
// backed by scripted models, routing by keyword.
func newTravelCoordinator(t *testing.T) *agent.CoordinatorAgent {
	t.Helper()

	bookerLLM := model.NewMockModel("mock", "mock")
	bookerLLM.AddFunctionCall("Book me a hotel in Paris.", core.FunctionCall{
		ID:        "fc-1",
		Name:      "booking_handler",
		Arguments: `{"request":"Book me a hotel in Paris."}`,
	})
	bookerLLM.AddResponse("Book me a hotel in Paris.", "Booking action for 'Book me a hotel in Paris.' has been simulated.")

	booker := agent.NewModelAgent("Booker", bookerLLM)
	booker.SetDescription("Handles booking requests for flights and hotels.")
	booker.RegisterTool(tool.NewBookingTool())

	infoLLM := model.NewMockModel("mock", "mock")
	infoLLM.AddResponse("What is the highest mountain in the world?", "Information request for 'What is the highest mountain in the world?'. Result: Simulated information retrieval.")

	info := agent.NewModelAgent("Info", infoLLM)
	info.SetDescription("Handles general information requests.")
	info.RegisterTool(tool.NewInfoTool())

	strategy := delegate.Func(func(_ context.Context, request string, _ []delegate.Candidate) (string, error) {
		switch {
		case strings.Contains(request, "Book"):
			return "Booker", nil
		case strings.Contains(request, "highest mountain"):
			return "Info", nil
		default:
			return "", delegate.ErrNoDelegate
		}
	})

	coordinator := agent.NewCoordinatorAgent("Coordinator", strategy)
	require.NoError(t, coordinator.SetSubAgents(booker, info))

	return coordinator
}

func TestProcess_DelegatesAndReturnsStubOutput(t *testing.T) {
	r := New(newTravelCoordinator(t))

	result := r.Process(context.Background(), "Book me a hotel in Paris.")
	assert.Equal(t, "Booking action for 'Book me a hotel in Paris.' has been simulated.", result)

	result = r.Process(context.Background(), "What is the highest mountain in the world?")
	assert.Equal(t, "Information request for 'What is the highest mountain in the world?'. Result: Simulated information retrieval.", result)
}

func TestProcess_UnclearRequestFallsBack(t *testing.T) {
	r := New(newTravelCoordinator(t))

	result := r.Process(context.Background(), "Tell me a random fact.")
	assert.Equal(t, "Coordinator could not delegate request: 'Tell me a random fact.'. Please clarify.", result)
}

func TestProcess_ErrorsUseStandardPrefix(t *testing.T) {
	strategy := delegate.Func(func(_ context.Context, _ string, _ []delegate.Candidate) (string, error) {
		return "", errors.New("model unreachable")
	})

	coordinator := agent.NewCoordinatorAgent("Coordinator", strategy)
	require.NoError(t, coordinator.SetSubAgents(agent.NewModelAgent("Booker", model.NewMockModel("mock", "mock"))))

	r := New(coordinator)

	result := r.Process(context.Background(), "Book a flight.")
	assert.True(t, strings.HasPrefix(result, "An error occurred while processing your request: "), result)
	assert.Contains(t, result, "model unreachable")
}

// silentAgent completes without emitting any final response.
type silentAgent struct {
	agent.BaseAgent

	mu         sync.Mutex
	sessionIDs []string
}

func newSilentAgent() *silentAgent {
	return &silentAgent{BaseAgent: agent.NewBaseAgent("Silent")}
}

func (a *silentAgent) Run(runCtx *core.RunContext) error {
	a.mu.Lock()
	a.sessionIDs = append(a.sessionIDs, runCtx.SessionID)
	a.mu.Unlock()
	return nil
}

func (a *silentAgent) SessionIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.sessionIDs...)
}

func TestProcess_NoFinalResponseReturnsEmpty(t *testing.T) {
	r := New(newSilentAgent())

	assert.Equal(t, "", r.Process(context.Background(), "anything"))
}

func TestProcess_FreshSessionPerRequest(t *testing.T) {
	root := newSilentAgent()
	r := New(root)

	r.Process(context.Background(), "first")
	r.Process(context.Background(), "second")

	ids := root.SessionIDs()
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
}

func TestRun_PersistsEventsToSession(t *testing.T) {
	store := session.NewInMemoryStore()
	r := New(newTravelCoordinator(t), func(o *Options) {
		o.SessionStore = store
	})

	sessionID := core.NewID()
	userContent := core.NewTextContent("user", "Book me a hotel in Paris.")

	_, eventsCh, errorsCh, err := r.Run(context.Background(), sessionID, userContent)
	require.NoError(t, err)

	for range eventsCh {
	}
	require.NoError(t, <-errorsCh)

	sess, err := store.Get(sessionID)
	require.NoError(t, err)

	events := sess.GetEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, "Book me a hotel in Paris.", events[0].Text())

	final := events[len(events)-1]
	assert.Equal(t, "Booking action for 'Book me a hotel in Paris.' has been simulated.", final.Text())
}

func TestProcess_RepeatedClarificationRunsAreStable(t *testing.T) {
	r := New(newTravelCoordinator(t))

	// The clarification answer makes Process cancel the run while the
	// coordinator is still waiting on the resume signal; repeated runs cover
	// every ordering of that shutdown race.
	for i := 0; i < 50; i++ {
		result := r.Process(context.Background(), "Tell me a random fact.")
		assert.Equal(t, "Coordinator could not delegate request: 'Tell me a random fact.'. Please clarify.", result)
	}
}

func TestRun_CancelMidRunClosesChannels(t *testing.T) {
	r := New(newTravelCoordinator(t))

	for i := 0; i < 25; i++ {
		runID, eventsCh, errorsCh, err := r.Run(context.Background(), core.NewID(),
			core.NewTextContent("user", "Book me a hotel in Paris."))
		require.NoError(t, err)

		// The run may already have finished; only in-flight runs can be
		// cancelled.
		_ = r.Cancel(runID)

		for range eventsCh {
		}
		for range errorsCh {
		}
	}
}

func TestCancel_UnknownRun(t *testing.T) {
	r := New(newSilentAgent())
	assert.Error(t, r.Cancel("missing"))
}

func TestProcess_PanickingAgentReturnsError(t *testing.T) {
	root := &panickingAgent{BaseAgent: agent.NewBaseAgent("Panic")}
	r := New(root)

	result := r.Process(context.Background(), "boom")
	assert.True(t, strings.HasPrefix(result, "An error occurred while processing your request: "), result)
	assert.Contains(t, result, "panicked")
}

type panickingAgent struct {
	agent.BaseAgent
}

func (a *panickingAgent) Run(_ *core.RunContext) error {
	panic("unexpected state")
}

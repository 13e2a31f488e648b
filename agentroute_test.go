package agentroute

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentroute/agentroute/agent"
	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/delegate"
	"github.com/agentroute/agentroute/model"
	"github.com/agentroute/agentroute/tool"
)

func newSupportApp(t *testing.T) *App {
	t.Helper()

	techLLM := model.NewMockModel("mock", "mock")
	techLLM.AddFunctionCall("I cannot log in.", core.FunctionCall{
		ID:        "fc-1",
		Name:      "technical_support_handler",
		Arguments: `{"issue":"I cannot log in."}`,
	})
	techLLM.AddResponse("I cannot log in.",
		"Technical support for 'I cannot log in.': Troubleshooting steps have been provided. Issue logged for tracking.")

	tech := agent.NewModelAgent("TechnicalSupport", techLLM)
	tech.SetDescription("Handles technical issues and troubleshooting.")
	tech.RegisterTool(tool.NewTechnicalSupportTool())

	billingLLM := model.NewMockModel("mock", "mock")
	billingLLM.AddResponse("What payment options do you offer?",
		"Billing inquiry for 'What payment options do you offer?': Account information retrieved. Payment status confirmed.")

	billing := agent.NewModelAgent("Billing", billingLLM)
	billing.SetDescription("Handles billing and payment questions.")
	billing.RegisterTool(tool.NewBillingTool())

	strategy := delegate.Func(func(_ context.Context, request string, _ []delegate.Candidate) (string, error) {
		switch {
		case strings.Contains(request, "log in"):
			return "TechnicalSupport", nil
		case strings.Contains(request, "payment"):
			return "Billing", nil
		default:
			return "", delegate.ErrNoDelegate
		}
	})

	coordinator := agent.NewCoordinatorAgent("SupportCoordinator", strategy)
	require.NoError(t, coordinator.SetSubAgents(tech, billing))

	return New(coordinator)
}

func TestApp_ProcessRoutesRequests(t *testing.T) {
	app := newSupportApp(t)

	result := app.Process(context.Background(), "I cannot log in.")
	assert.Equal(t,
		"Technical support for 'I cannot log in.': Troubleshooting steps have been provided. Issue logged for tracking.",
		result)

	result = app.Process(context.Background(), "What payment options do you offer?")
	assert.Equal(t,
		"Billing inquiry for 'What payment options do you offer?': Account information retrieved. Payment status confirmed.",
		result)
}

func TestApp_ProcessUnclearRequest(t *testing.T) {
	app := newSupportApp(t)

	result := app.Process(context.Background(), "Hello?")
	assert.Equal(t, "Coordinator could not delegate request: 'Hello?'. Please clarify.", result)
}

func TestApp_RunStreamsEvents(t *testing.T) {
	app := newSupportApp(t)

	_, eventsCh, errorsCh, err := app.Run(context.Background(), core.NewID(),
		core.NewTextContent("user", "I cannot log in."))
	require.NoError(t, err)

	var events []core.Event
	for ev := range eventsCh {
		events = append(events, ev)
	}
	require.NoError(t, <-errorsCh)

	// Delegation signal, tool call, tool response, final answer.
	require.GreaterOrEqual(t, len(events), 4)
	require.NotNil(t, events[0].Actions.DelegateTo)
	assert.Equal(t, "TechnicalSupport", *events[0].Actions.DelegateTo)

	final := events[len(events)-1]
	assert.True(t, final.IsFinalResponse())
	assert.Contains(t, final.Text(), "Troubleshooting steps have been provided")
}

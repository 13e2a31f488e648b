package agent

import (
	"errors"
	"fmt"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/delegate"
	"github.com/agentroute/agentroute/tool"
)

// CoordinatorAgentOptions configures a CoordinatorAgent instance.
type CoordinatorAgentOptions struct {
	// Description overrides the default coordinator description.
	Description string
}

// CoordinatorAgent routes each incoming request to exactly one of its
// sub-agents. The routing decision is made by the injected delegate.Strategy,
// which sees only the request text and the candidate roster (sub-agent names
// and descriptions). When the strategy declines with delegate.ErrNoDelegate,
// or names an agent outside the hierarchy, the coordinator answers with a
// clarification message instead of failing the run.
//
// The coordinator itself never answers domain requests; its only outputs are
// delegation control events and the clarification fallback.
type CoordinatorAgent struct {
	BaseAgent
	strategy delegate.Strategy
}

// NewCoordinatorAgent creates a coordinator with the given delegation strategy.
func NewCoordinatorAgent(name string, strategy delegate.Strategy, optFns ...func(o *CoordinatorAgentOptions)) *CoordinatorAgent {
	opts := CoordinatorAgentOptions{
		Description: "Coordinator that analyzes requests and routes them to the appropriate specialist agent.",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &CoordinatorAgent{
		BaseAgent: NewBaseAgent(name),
		strategy:  strategy,
	}
	a.SetDescription(opts.Description)

	return a
}

// Run implements core.Agent. It consults the strategy, emits a delegation
// control event for observability, then runs the chosen specialist against
// the same run context so the specialist's events flow to the runner directly.
func (a *CoordinatorAgent) Run(runCtx *core.RunContext) error {
	request := runCtx.RequestText()

	candidates := delegate.CandidatesFromAgents(a.SubAgents())

	runCtx.LogDebug("coordinator.choose.start", "agent", a.Name(), "candidates", len(candidates))

	name, err := a.strategy.Choose(runCtx.Context, request, candidates)
	if err != nil {
		if errors.Is(err, delegate.ErrNoDelegate) {
			runCtx.LogInfo("coordinator.choose.declined", "agent", a.Name(), "reason", err.Error())
			return a.emitClarification(runCtx, request)
		}
		return fmt.Errorf("delegation failed: %w", err)
	}

	target := a.FindAgent(name)
	if target == nil || name == a.Name() {
		runCtx.LogWarn("coordinator.choose.unknown_target", "agent", a.Name(), "target", name)
		return a.emitClarification(runCtx, request)
	}

	runCtx.LogInfo("coordinator.delegate", "agent", a.Name(), "target", name)

	ev := core.NewEvent(runCtx.RunID, a.Name())
	ev.Actions.DelegateTo = &name
	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}
	if err := runCtx.WaitForResume(); err != nil {
		return err
	}

	return target.Run(runCtx)
}

// emitClarification answers the run with the standard clarification message.
func (a *CoordinatorAgent) emitClarification(runCtx *core.RunContext, request string) error {
	ev := core.NewMessageEvent(a.Name(), tool.UnclearResult(request))
	ev.RunID = runCtx.RunID

	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}

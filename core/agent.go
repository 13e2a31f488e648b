package core

// Agent defines the interface that all agents in agentroute implement.
//
// Agents are the processing units of the framework. They receive input
// through a RunContext, process it, and emit events to communicate results
// back to the runner. The interface supports both standalone agents and
// coordinator/specialist hierarchies through the sub-agent methods.
//
// Implementations must:
//   - Respect context cancellation
//   - Emit events only through the provided RunContext
//   - Manage their lifecycle through Start/Stop
type Agent interface {
	Name() string
	Description() string
	Start(runCtx *RunContext) error
	Stop(runCtx *RunContext) error
	Run(runCtx *RunContext) error
	SetSubAgents(children ...Agent) error
	SubAgents() []Agent
	Parent() Agent
	FindAgent(name string) Agent
}

// AgentInfo carries identifying details about an agent used in contexts and
// events. Name is the external identifier; Type categorizes the
// implementation (e.g. "coordinator", "specialist").
type AgentInfo struct{ Name, Type string }

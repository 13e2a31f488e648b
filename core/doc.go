// Package core defines the shared primitives of the agentroute framework:
// the Agent interface, the Event model exchanged between agents and the
// runner, role-based Content with heterogeneous Parts, conversational
// Sessions, and the per-run execution scopes (RunContext, ToolContext).
//
// Higher layers (agent, flow, delegate, runner) depend only on this package
// so concrete implementations stay swappable.
package core

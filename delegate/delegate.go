// Package delegate abstracts the routing decision of a coordinator agent as
// an injected strategy. The default ModelStrategy asks a language model to
// pick a specialist; deterministic implementations can be substituted in
// tests so the rest of the pipeline stays verifiable without model behavior.
package delegate

import (
	"context"
	"errors"

	"github.com/agentroute/agentroute/core"
)

// ErrNoDelegate is returned by a Strategy when no candidate suits the request.
var ErrNoDelegate = errors.New("no suitable specialist for request")

// Candidate describes one specialist a coordinator may delegate to. The
// description is the natural language text shown to the deciding model.
type Candidate struct {
	Name        string
	Description string
}

// Strategy chooses a specialist for a request. Implementations return the
// name of one of the given candidates, or ErrNoDelegate (possibly wrapped)
// when none applies. Any other error is a pipeline failure.
type Strategy interface {
	Choose(ctx context.Context, request string, candidates []Candidate) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as
// strategies.
type Func func(ctx context.Context, request string, candidates []Candidate) (string, error)

// Choose implements Strategy.
func (f Func) Choose(ctx context.Context, request string, candidates []Candidate) (string, error) {
	return f(ctx, request, candidates)
}

// CandidatesFromAgents derives the candidate roster from a coordinator's
// sub-agents, preserving order.
func CandidatesFromAgents(agents []core.Agent) []Candidate {
	candidates := make([]Candidate, 0, len(agents))
	for _, a := range agents {
		candidates = append(candidates, Candidate{Name: a.Name(), Description: a.Description()})
	}
	return candidates
}

func candidateNames(candidates []Candidate) map[string]bool {
	names := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		names[c.Name] = true
	}
	return names
}

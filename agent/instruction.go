package agent

import "github.com/agentroute/agentroute/core"

// Instruction yields the system prompt for one run of a model agent. Fixed
// prompts dominate in routing setups, so the static case is the zero-cost
// default; dynamic implementations can read session state or the request
// itself through the run context.
type Instruction interface {
	Resolve(runCtx *core.RunContext) (string, error)
}

// StaticInstruction is a constant prompt string.
type StaticInstruction string

// Resolve implements Instruction.
func (s StaticInstruction) Resolve(*core.RunContext) (string, error) {
	return string(s), nil
}

// InstructionFunc adapts an ordinary function to the Instruction interface
// for prompts computed per run.
type InstructionFunc func(runCtx *core.RunContext) (string, error)

// Resolve implements Instruction.
func (f InstructionFunc) Resolve(runCtx *core.RunContext) (string, error) {
	return f(runCtx)
}

// NewInstructionFromText wraps a fixed prompt string.
func NewInstructionFromText(text string) Instruction {
	return StaticInstruction(text)
}

// NewInstructionFromState resolves the prompt from a session state key,
// falling back to the given text when the key is absent or not a string.
// Combined with an output key on another agent this lets one agent's answer
// steer the next agent's prompt.
func NewInstructionFromState(key, fallback string) Instruction {
	return InstructionFunc(func(runCtx *core.RunContext) (string, error) {
		if runCtx != nil {
			if v, ok := runCtx.GetState(key); ok {
				if text, ok := v.(string); ok {
					return text, nil
				}
			}
		}
		return fallback, nil
	})
}

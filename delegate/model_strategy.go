package delegate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/logging"
	"github.com/agentroute/agentroute/model"
)

// delegateToolName is the function the deciding model calls to pick a
// specialist by name.
const delegateToolName = "delegate_to_agent"

// ModelStrategyOptions configures a ModelStrategy.
type ModelStrategyOptions struct {
	// Instruction is the coordinator's natural language routing brief shown
	// to the model ahead of the candidate roster.
	Instruction string
	// Logger receives routing diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// ModelStrategy delegates the routing decision to a language model. The model
// is shown the coordinator instruction, the candidate roster and a single
// delegate_to_agent tool definition; the chosen specialist is read from the
// returned function call. As a fallback, a plain text reply that exactly
// names a candidate is accepted.
type ModelStrategy struct {
	llm         model.Model
	instruction string
	logger      logging.Logger
}

// NewModelStrategy constructs the default LLM-driven routing strategy.
func NewModelStrategy(llm model.Model, optFns ...func(o *ModelStrategyOptions)) *ModelStrategy {
	opts := ModelStrategyOptions{
		Instruction: "You analyze incoming user requests and delegate them to the appropriate specialist agent. Do not try to answer the user directly.",
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ModelStrategy{llm: llm, instruction: opts.Instruction, logger: opts.Logger}
}

// Choose implements Strategy.
func (s *ModelStrategy) Choose(ctx context.Context, request string, candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates registered", ErrNoDelegate)
	}

	req := model.Request{
		Instructions: s.buildInstructions(candidates),
		Contents: []core.Content{
			core.NewTextContent("user", request),
		},
		Tools: []model.ToolDefinition{delegateToolDefinition(candidates)},
	}

	respCh, errCh := s.llm.Generate(ctx, req)

	names := candidateNames(candidates)

	var finalText string

	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case resp, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if resp.Partial {
				continue
			}
			for _, fc := range functionCalls(resp.Content) {
				if fc.Name != delegateToolName {
					continue
				}
				name, err := parseDelegateArgs(fc.Arguments)
				if err != nil {
					return "", fmt.Errorf("malformed %s call: %w", delegateToolName, err)
				}
				if !names[name] {
					s.logger.Warn("delegate.choose.unknown_agent", "agent", name)
					return "", fmt.Errorf("%w: model chose unknown agent %q", ErrNoDelegate, name)
				}
				s.logger.Info("delegate.choose.selected", "agent", name)
				return name, nil
			}
			if text := resp.Content.Text(); text != "" {
				finalText = text
			}
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", fmt.Errorf("delegation model call failed: %w", err)
			}
		}
	}

	// Plain text fallback: accept an exact candidate name.
	if name := strings.TrimSpace(finalText); names[name] {
		s.logger.Info("delegate.choose.selected_by_text", "agent", name)
		return name, nil
	}

	return "", fmt.Errorf("%w: model produced no delegation", ErrNoDelegate)
}

func (s *ModelStrategy) buildInstructions(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString(s.instruction)
	b.WriteString("\n\nAvailable specialist agents:\n")
	for _, c := range candidates {
		fmt.Fprintf(&b, "- %s: %s\n", c.Name, c.Description)
	}
	fmt.Fprintf(&b, "\nCall %s with the name of exactly one specialist.", delegateToolName)
	return b.String()
}

func delegateToolDefinition(candidates []Candidate) model.ToolDefinition {
	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.Name)
	}

	return model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        delegateToolName,
			Description: "Delegate the user request to the named specialist agent.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"agent": map[string]any{
						"type":        "string",
						"enum":        names,
						"description": "Target specialist agent name",
					},
				},
				"required": []string{"agent"},
			},
		},
	}
}

func functionCalls(content core.Content) []core.FunctionCall {
	var calls []core.FunctionCall
	for _, p := range content.Parts {
		if fc, ok := p.(core.FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

func parseDelegateArgs(arguments string) (string, error) {
	var args struct {
		Agent string `json:"agent"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return "", fmt.Errorf("failed to unmarshal args: %w", err)
	}
	if args.Agent == "" {
		return "", fmt.Errorf("field 'agent' must be non-empty string")
	}
	return args.Agent, nil
}

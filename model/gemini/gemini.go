// Package gemini implements model.Model on the official google.golang.org/genai
// SDK. The client talks either to the Gemini API directly (API key) or to
// Vertex AI (project + location), selected through config.Config.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/agentroute/agentroute/config"
	"github.com/agentroute/agentroute/core"
	"github.com/agentroute/agentroute/model"
)

// Options configures the Gemini model adapter.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int32
}

// Model wraps the genai client behind the generic model.Model interface.
type Model struct {
	client *genai.Client
	opts   Options
	vertex bool
}

func defaultOptions() Options {
	return Options{
		Model:           "gemini-2.5-flash",
		Temperature:     0.7,
		MaxOutputTokens: 4096,
	}
}

// New creates a Gemini model from the resolved configuration. A configured
// project selects the Vertex AI backend, otherwise the API key is used.
func New(ctx context.Context, cfg config.Config, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	if err := cfg.Apply(); err != nil {
		return nil, err
	}

	clientConfig := &genai.ClientConfig{}
	if cfg.UseVertex() {
		clientConfig.Project = cfg.Project
		clientConfig.Location = cfg.Location
		clientConfig.Backend = genai.BackendVertexAI
	} else {
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("either a project or an API key is required")
		}
		clientConfig.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Model{client: client, opts: opts, vertex: cfg.UseVertex()}, nil
}

// NewFromClient creates a Gemini model from an existing client.
func NewFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Model{client: client, opts: opts}
}

// Info returns metadata describing this model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini", SupportsTools: true}
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		contents, system := m.buildContents(req)
		genConfig := m.buildConfig(system, req.Tools)

		if req.Stream {
			m.generateStream(ctx, contents, genConfig, out, errCh)
			return
		}

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, contents, genConfig)
		if err != nil {
			errCh <- fmt.Errorf("gemini generation failed: %w", err)
			return
		}

		result, err := parseResponse(resp)
		if err != nil {
			errCh <- err
			return
		}

		out <- result
	}()

	return out, errCh
}

func (m *Model) generateStream(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
	out chan<- model.Response,
	errCh chan<- error,
) {
	var textBuilder strings.Builder
	var calls []core.Part
	finishReason := ""

	for resp, err := range m.client.Models.GenerateContentStream(ctx, m.opts.Model, contents, genConfig) {
		if err != nil {
			errCh <- fmt.Errorf("gemini streaming error: %w", err)
			return
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}

		candidate := resp.Candidates[0]
		if candidate.FinishReason != "" {
			finishReason = string(candidate.FinishReason)
		}

		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				textBuilder.WriteString(part.Text)
				out <- model.Response{
					Partial: true,
					Content: core.NewTextContent("assistant", part.Text),
				}
			}
			if part.FunctionCall != nil {
				calls = append(calls, functionCallPart(part.FunctionCall))
			}
		}
	}

	parts := make([]core.Part, 0, len(calls)+1)
	if textBuilder.Len() > 0 {
		parts = append(parts, core.TextPart{Text: textBuilder.String()})
	}
	parts = append(parts, calls...)

	out <- model.Response{
		Partial:      false,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: finishReason,
	}
}

// buildContents converts the normalized request into genai contents plus the
// system instruction content.
func (m *Model) buildContents(req model.Request) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content

	systemText := req.Instructions

	for _, c := range req.Contents {
		if c.Role == "system" {
			if text := c.Text(); text != "" {
				systemText = text
			}
			continue
		}

		if content := toGenaiContent(c); content != nil {
			contents = append(contents, content)
		}
	}

	if systemText != "" {
		system = &genai.Content{
			Role:  "user",
			Parts: []*genai.Part{{Text: systemText}},
		}
	}

	return contents, system
}

func (m *Model) buildConfig(system *genai.Content, tools []model.ToolDefinition) *genai.GenerateContentConfig {
	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: system,
		MaxOutputTokens:   m.opts.MaxOutputTokens,
	}

	if m.opts.Temperature > 0 {
		genConfig.Temperature = genai.Ptr(float32(m.opts.Temperature))
	}

	for _, t := range tools {
		genConfig.Tools = append(genConfig.Tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        t.Function.Name,
				Description: t.Function.Description,
				Parameters:  toGenaiSchema(t.Function.Parameters),
			}},
		})
	}

	return genConfig
}

// toGenaiContent converts one normalized content into a genai content.
// Assistant turns map to the "model" role; tool responses become function
// response parts on the "user" role as the API expects.
func toGenaiContent(c core.Content) *genai.Content {
	var parts []*genai.Part

	for _, p := range c.Parts {
		switch part := p.(type) {
		case core.TextPart:
			if part.Text != "" {
				parts = append(parts, &genai.Part{Text: part.Text})
			}
		case core.FunctionCallPart:
			args := map[string]any{}
			if part.FunctionCall.Arguments != "" {
				_ = json.Unmarshal([]byte(part.FunctionCall.Arguments), &args)
			}
			parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
				ID:   part.FunctionCall.ID,
				Name: part.FunctionCall.Name,
				Args: args,
			}})
		case core.FunctionResponsePart:
			fr := part.FunctionResponse
			response := map[string]any{}
			if fr.Error != "" {
				response["error"] = fr.Error
			} else if s, ok := fr.Response.(string); ok {
				response["result"] = s
			} else if mp, ok := fr.Response.(map[string]any); ok {
				response = mp
			} else {
				response["result"] = fmt.Sprintf("%v", fr.Response)
			}
			parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
				ID:       fr.ID,
				Name:     fr.Name,
				Response: response,
			}})
		}
	}

	if len(parts) == 0 {
		return nil
	}

	role := "user"
	if c.Role == "assistant" {
		role = "model"
	}

	return &genai.Content{Role: role, Parts: parts}
}

// toGenaiSchema converts a JSON schema map to the genai schema type.
func toGenaiSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	s := &genai.Schema{}

	if t, ok := schema["type"].(string); ok {
		s.Type = genai.Type(strings.ToUpper(t))
	}
	if desc, ok := schema["description"].(string); ok {
		s.Description = desc
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]any); ok {
				s.Properties[name] = toGenaiSchema(propMap)
			}
		}
	}
	s.Required = stringSlice(schema["required"])
	if items, ok := schema["items"].(map[string]any); ok {
		s.Items = toGenaiSchema(items)
	}
	s.Enum = stringSlice(schema["enum"])

	return s
}

// stringSlice accepts both []string and []any JSON decodings.
func stringSlice(v any) []string {
	switch values := v.(type) {
	case []string:
		return values
	case []any:
		var result []string
		for _, item := range values {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return nil
}

func functionCallPart(fc *genai.FunctionCall) core.Part {
	args := ""
	if fc.Args != nil {
		if raw, err := json.Marshal(fc.Args); err == nil {
			args = string(raw)
		}
	}
	return core.FunctionCallPart{FunctionCall: core.FunctionCall{
		ID:        fc.ID,
		Name:      fc.Name,
		Arguments: args,
	}}
}

// parseResponse converts a non-streaming genai response.
func parseResponse(resp *genai.GenerateContentResponse) (model.Response, error) {
	if len(resp.Candidates) == 0 {
		return model.Response{}, fmt.Errorf("empty response from gemini")
	}

	candidate := resp.Candidates[0]

	var parts []core.Part
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				parts = append(parts, core.TextPart{Text: part.Text})
			}
			if part.FunctionCall != nil {
				parts = append(parts, functionCallPart(part.FunctionCall))
			}
		}
	}

	result := model.Response{
		Partial:      false,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: string(candidate.FinishReason),
	}

	if resp.UsageMetadata != nil {
		result.Usage = &model.TokenUsage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	return result, nil
}

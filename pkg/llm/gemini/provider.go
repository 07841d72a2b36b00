package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"

	"agent-chat-be/pkg/llm"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

type Provider struct {
	client *genai.Client
	model  string
}

var _ llm.StreamProvider = &Provider{}

func NewProvider(ctx context.Context, apiKey, model string) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: client, model: model}, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	options := llm.ApplyOptions(opts...)

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	cfg, contents := convHistory(history)
	if len(contents) == 0 {
		return nil, fmt.Errorf("no contents")
	}
	temperature := float32(options.Temperature)
	cfg.Temperature = &temperature
	if options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(options.MaxTokens)
	}

	next, stop := iter.Pull2(p.client.Models.GenerateContentStream(ctx, model, contents, cfg))
	return &stream{next: next, stop: stop}, nil
}

// convHistory moves system messages into the system instruction; Gemini has no system role.
func convHistory(history []llm.Message) (*genai.GenerateContentConfig, []*genai.Content) {
	cfg := &genai.GenerateContentConfig{}
	var (
		system   []*genai.Part
		contents []*genai.Content
	)
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			system = append(system, genai.NewPartFromText(msg.Content))
		case llm.RoleAssistant, "model":
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		cfg.SystemInstruction = &genai.Content{Parts: system}
	}
	return cfg, contents
}

type stream struct {
	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()
}

func (s *stream) Recv() (string, error) {
	for {
		resp, err, ok := s.next()
		if !ok {
			return "", io.EOF
		}
		if err != nil {
			return "", fmt.Errorf("gemini stream: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}

		var sb strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
}

func (s *stream) Close() error {
	s.stop()
	return nil
}

package openai

import (
	"context"
	"fmt"
	"io"

	"agent-chat-be/pkg/llm"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/packages/ssestream"
)

const DefaultModel = "gpt-4o-mini"

type Provider struct {
	client sdk.Client
	model  string
}

var _ llm.StreamProvider = &Provider{}

// NewProvider builds a chat-completions client. baseURL is optional and lets any
// OpenAI-compatible endpoint stand in.
func NewProvider(apiKey, baseURL, model string) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	return &Provider{client: sdk.NewClient(opts...), model: model}
}

func (p *Provider) Name() string {
	return "openai"
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, opts ...llm.Option) (llm.Stream, error) {
	options := llm.ApplyOptions(opts...)

	model := p.model
	if options.Model != "" {
		model = options.Model
	}

	params := sdk.ChatCompletionNewParams{
		Model:       sdk.ChatModel(model),
		Messages:    convMessages(history),
		Temperature: param.NewOpt(options.Temperature),
	}
	if options.MaxTokens > 0 {
		params.MaxCompletionTokens = param.NewOpt(int64(options.MaxTokens))
	}

	s := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := s.Err(); err != nil {
		s.Close()
		return nil, fmt.Errorf("openai stream: %w", err)
	}
	return &stream{s: s}, nil
}

func convMessages(history []llm.Message) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			out = append(out, sdk.SystemMessage(msg.Content))
		case llm.RoleAssistant, "model":
			out = append(out, sdk.AssistantMessage(msg.Content))
		default:
			out = append(out, sdk.UserMessage(msg.Content))
		}
	}
	return out
}

type stream struct {
	s *ssestream.Stream[sdk.ChatCompletionChunk]
}

func (s *stream) Recv() (string, error) {
	for s.s.Next() {
		chunk := s.s.Current()
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
	if err := s.s.Err(); err != nil {
		return "", fmt.Errorf("openai stream: %w", err)
	}
	return "", io.EOF
}

func (s *stream) Close() error {
	return s.s.Close()
}

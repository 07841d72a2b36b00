package factory

import (
	"context"
	"fmt"

	"agent-chat-be/internal/config"
	"agent-chat-be/pkg/llm"
	"agent-chat-be/pkg/llm/gemini"
	"agent-chat-be/pkg/llm/mock"
	"agent-chat-be/pkg/llm/ollama"
	"agent-chat-be/pkg/llm/openai"
)

func NewStreamProvider(ctx context.Context, cfg *config.Config) (llm.StreamProvider, error) {
	switch cfg.Ai.LLMProvider {
	case "ollama":
		return ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel), nil
	case "openai":
		if cfg.Keys.OpenAI == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		return openai.NewProvider(cfg.Keys.OpenAI, cfg.Ai.OpenAIBaseURL, cfg.Ai.LLMModel), nil
	case "gemini":
		return gemini.NewProvider(ctx, cfg.Keys.GoogleGemini, cfg.Ai.LLMModel)
	case "mock":
		return mock.NewProvider("", 4), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Ai.LLMProvider)
	}
}

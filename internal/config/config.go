package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Relay    RelayConfig
	Ai       AIConfig
	Render   RenderConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	RelayLogFilePath   string
	CorsAllowedOrigins string
	AgentsFile         string
	OtelEnabled        bool
	OtelEndpoint       string
}

type DatabaseConfig struct {
	Connection string        // Empty means in-memory repositories
	MessageTTL time.Duration // Only used by the in-memory message store
}

type RelayConfig struct {
	Broker          string // "redis", "nats" or "none"
	RedisURL        string
	NatsURL         string
	FallbackEnabled bool
}

type APIKeys struct {
	OpenAI       string
	GoogleGemini string
}

type AIConfig struct {
	LLMProvider   string // "ollama", "openai", "gemini", "mock"
	LLMModel      string // empty selects the provider's default model
	OllamaBaseURL string
	OpenAIBaseURL string

	// Upper bound on how long a session stays locked by one generation
	GenerationTimeout time.Duration
}

type RenderConfig struct {
	HighlightStyle string
	NestedHeadings bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RelayLogFilePath:   getEnv("RELAY_LOG_FILE_PATH", "logs/relay.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			AgentsFile:         getEnv("AGENTS_FILE", "agents.yaml"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
			MessageTTL: getEnvAsDuration("MESSAGE_TTL", 24*time.Hour),
		},
		Relay: RelayConfig{
			Broker:          getEnv("RELAY_BROKER", "redis"),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
			NatsURL:         getEnv("NATS_URL", "nats://localhost:4222"),
			FallbackEnabled: getEnvAsBool("RELAY_FALLBACK_ENABLED", true),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", ""),
			GenerationTimeout: getEnvAsDuration("GENERATION_TIMEOUT", 5*time.Minute),
		},
		Render: RenderConfig{
			HighlightStyle: getEnv("HIGHLIGHT_STYLE", "nord"),
			NestedHeadings: getEnvAsBool("NESTED_HEADINGS", false),
		},
		Keys: APIKeys{
			OpenAI:       getEnv("OPENAI_API_KEY", ""),
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	// Bare numbers are read as seconds
	if seconds := getEnvAsInt(key, -1); seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

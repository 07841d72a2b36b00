package bootstrap

import (
	"context"
	"errors"
	"log"
	"time"

	"agent-chat-be/internal/config"
	"agent-chat-be/internal/controller"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/internal/repository/implementation"
	"agent-chat-be/internal/repository/memory"
	"agent-chat-be/internal/service"
	"agent-chat-be/internal/websocket"
	"agent-chat-be/pkg/llm/factory"
	"agent-chat-be/pkg/markdown"
	pktNats "agent-chat-be/pkg/nats"
	"agent-chat-be/pkg/relay"

	"gorm.io/gorm"
)

const brokerPingTimeout = 3 * time.Second

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatController controller.IChatController

	// Background services (run and drained by main.go)
	ChatService  service.IChatService
	Relay        *relay.Relay
	WebSocketHub *websocket.Hub
}

type pinger interface {
	Ping(ctx context.Context) error
}

// NewContainer wires the application. A nil db selects the in-memory repositories.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	relayLogger := logger.NewIsolatedLogger(cfg.App.RelayLogFilePath)

	// 2. Repositories
	agentRepo, messageRepo := newRepositories(db, cfg)

	// 3. Event Relay
	broker := newBroker(cfg, relayLogger)
	transport := relay.NewFailoverTransport(broker, relay.NewLocalTransport(relayLogger), relayLogger)
	eventRelay := relay.New(transport, relayLogger)
	log.Printf("[INFO] Using relay transport: %s", transport.Name())

	// WebSocket Hub (run by main.go)
	wsHub := websocket.NewHub(eventRelay, relayLogger)

	// 4. Services
	llmProvider, err := factory.NewStreamProvider(context.Background(), cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s", llmProvider.Name())

	renderer := markdown.NewRenderer(cfg.Render.HighlightStyle)
	generationService := service.NewGenerationService(
		llmProvider,
		messageRepo,
		eventRelay,
		markdown.NewGoldmarkParser(),
		renderer,
		sysLogger,
		service.WithNestedHeadings(cfg.Render.NestedHeadings),
	)

	chatService := service.NewChatService(
		agentRepo,
		messageRepo,
		eventRelay,
		generationService,
		memory.NewSessionLocks(cfg.Ai.GenerationTimeout),
		renderer,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		Logger:         sysLogger,
		ChatController: controller.NewChatController(chatService, wsHub),
		ChatService:    chatService,
		Relay:          eventRelay,
		WebSocketHub:   wsHub,
	}
}

func newRepositories(db *gorm.DB, cfg *config.Config) (contract.AgentRepository, contract.MessageRepository) {
	if db != nil {
		log.Printf("[INFO] Using postgres repositories")
		return implementation.NewAgentRepository(db), implementation.NewMessageRepository(db)
	}

	agents, err := memory.LoadAgents(cfg.App.AgentsFile)
	if err != nil {
		log.Fatalf("[FATAL] Failed to load agents: %v", err)
	}
	log.Printf("[INFO] Using in-memory repositories (%d agents, message ttl %s)", len(agents), cfg.Database.MessageTTL)
	return memory.NewAgentRepository(agents), memory.NewMessageRepository(cfg.Database.MessageTTL)
}

// newBroker returns nil when no broker is configured. An unreachable broker is
// fatal unless the in-process fallback is enabled.
func newBroker(cfg *config.Config, relayLogger logger.ILogger) relay.Transport {
	var broker relay.Transport
	switch cfg.Relay.Broker {
	case "redis":
		broker = relay.NewRedisTransport(relay.NewRedisClient(cfg.Relay.RedisURL), relayLogger)
	case "nats":
		nt, err := pktNats.Connect(cfg.Relay.NatsURL, relayLogger)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect to NATS: %v", err)
		}
		broker = nt
	case "", "none":
		return nil
	default:
		log.Fatalf("[FATAL] Unsupported relay broker: %s", cfg.Relay.Broker)
	}

	ctx, cancel := context.WithTimeout(context.Background(), brokerPingTimeout)
	defer cancel()

	if p, ok := broker.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			if !cfg.Relay.FallbackEnabled || !errors.Is(err, relay.ErrTransportUnavailable) {
				log.Fatalf("[FATAL] Relay broker %s unreachable: %v", broker.Name(), err)
			}
			log.Printf("[WARN] Relay broker %s unreachable, publishing in-process until it recovers: %v", broker.Name(), err)
		}
	}
	return broker
}

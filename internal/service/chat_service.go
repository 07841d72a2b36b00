package service

import (
	"context"
	"fmt"
	"sync"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/mapper"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/pkg/events"
	"agent-chat-be/pkg/llm"
	"agent-chat-be/pkg/relay"
)

// SessionGuard admits a single generation per session.
type SessionGuard interface {
	TryAcquire(sessionID string) bool
	Release(sessionID string)
}

// HistoryRenderer renders stored assistant markdown for replay.
type HistoryRenderer interface {
	MarkdownToHTML(text string) (string, error)
}

type IChatService interface {
	// SendMessage stores the user's message, announces it on the session channel
	// and starts the agent's reply in the background.
	SendMessage(ctx context.Context, req *dto.SendMessageRequest) error
	GetMessages(ctx context.Context, req *dto.GetMessagesRequest) (*dto.GetMessagesResponse, error)
	GetAgents(ctx context.Context) ([]*dto.AgentResponse, error)
	// Wait blocks until background replies and their renders are done.
	Wait()
}

type chatService struct {
	agents     contract.AgentRepository
	messages   contract.MessageRepository
	publisher  relay.Publisher
	generation IGenerationService
	guard      SessionGuard
	renderer   HistoryRenderer
	mapper     *mapper.ChatMapper
	logger     logger.ILogger

	running sync.WaitGroup
}

func NewChatService(
	agents contract.AgentRepository,
	messages contract.MessageRepository,
	publisher relay.Publisher,
	generation IGenerationService,
	guard SessionGuard,
	renderer HistoryRenderer,
	log logger.ILogger,
) IChatService {
	return &chatService{
		agents:     agents,
		messages:   messages,
		publisher:  publisher,
		generation: generation,
		guard:      guard,
		renderer:   renderer,
		mapper:     mapper.NewChatMapper(),
		logger:     log,
	}
}

func (s *chatService) findAgent(ctx context.Context, key string) (*entity.Agent, error) {
	agent, err := s.agents.FindOne(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("find agent %s: %w", key, err)
	}
	if agent == nil {
		return nil, ErrAgentNotFound
	}
	return agent, nil
}

func (s *chatService) SendMessage(ctx context.Context, req *dto.SendMessageRequest) error {
	agent, err := s.findAgent(ctx, req.AgentKey)
	if err != nil {
		return err
	}

	if !s.guard.TryAcquire(req.SessionId) {
		return ErrGenerationInProgress
	}
	started := false
	defer func() {
		if !started {
			s.guard.Release(req.SessionId)
		}
	}()

	userMessage := &entity.Message{
		AgentKey:  agent.Key,
		SessionId: req.SessionId,
		Role:      entity.MessageRoleUser,
		Content:   req.MsgContent,
	}
	if err := s.messages.Create(ctx, userMessage); err != nil {
		return fmt.Errorf("persist user message: %w", err)
	}

	channel := events.Channel(req.SessionId)
	if err := s.publisher.Publish(ctx, channel, events.NewRequest(req.MsgContent)); err != nil {
		s.logger.Warn("ChatService", "Request event not published", map[string]interface{}{
			"channel": channel,
			"error":   err.Error(),
		})
	}

	history, err := s.buildHistory(ctx, agent, req.SessionId)
	if err != nil {
		return err
	}

	// The reply outlives the HTTP request that asked for it.
	genCtx := context.WithoutCancel(ctx)
	started = true
	s.running.Add(1)
	go func() {
		defer s.running.Done()
		defer s.guard.Release(req.SessionId)

		_ = s.generation.Generate(genCtx, GenerationRequest{
			SessionId: req.SessionId,
			Agent:     agent,
			History:   history,
		})
	}()

	return nil
}

// buildHistory puts the persona first, then the session's turns with this agent.
func (s *chatService) buildHistory(ctx context.Context, agent *entity.Agent, sessionId string) ([]llm.Message, error) {
	stored, err := s.messages.FindAllBySessionAndAgent(ctx, sessionId, agent.Key)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	history := make([]llm.Message, 0, len(stored)+1)
	history = append(history, llm.Message{Role: llm.RoleSystem, Content: agent.Persona})
	for _, m := range stored {
		role := llm.RoleUser
		if m.Role == entity.MessageRoleAssistant {
			role = llm.RoleAssistant
		}
		history = append(history, llm.Message{Role: role, Content: m.Content})
	}
	return history, nil
}

func (s *chatService) GetMessages(ctx context.Context, req *dto.GetMessagesRequest) (*dto.GetMessagesResponse, error) {
	agent, err := s.findAgent(ctx, req.AgentKey)
	if err != nil {
		return nil, err
	}

	stored, err := s.messages.FindAllBySessionAndAgent(ctx, req.SessionId, req.AgentKey)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	res := &dto.GetMessagesResponse{
		SessionId: req.SessionId,
		Agent:     s.mapper.AgentToResponse(agent),
		Messages:  make([]*dto.MessageResponse, 0, len(stored)),
	}
	for _, m := range stored {
		content := m.Content
		if m.Role == entity.MessageRoleAssistant {
			html, err := s.renderer.MarkdownToHTML(m.Content)
			if err != nil {
				s.logger.Warn("ChatService", "History render failed, returning markdown", map[string]interface{}{
					"message_id": m.Id,
					"error":      err.Error(),
				})
			} else {
				content = html
			}
		}
		res.Messages = append(res.Messages, &dto.MessageResponse{
			Id:        m.Id,
			Role:      m.Role,
			Content:   content,
			CreatedAt: m.CreatedAt,
		})
	}
	return res, nil
}

func (s *chatService) GetAgents(ctx context.Context) ([]*dto.AgentResponse, error) {
	agents, err := s.agents.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	res := make([]*dto.AgentResponse, len(agents))
	for i, a := range agents {
		res[i] = s.mapper.AgentToResponse(a)
	}
	return res, nil
}

func (s *chatService) Wait() {
	s.running.Wait()
	s.generation.Wait()
}

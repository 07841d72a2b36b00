package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/internal/repository/contract"
	"agent-chat-be/pkg/events"
	"agent-chat-be/pkg/llm"
	"agent-chat-be/pkg/markdown"
	"agent-chat-be/pkg/relay"
	"agent-chat-be/pkg/stream"

	"github.com/yuin/goldmark/ast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UnitRenderer turns an emitted unit into stored markdown and display HTML.
type UnitRenderer interface {
	Markdown(root ast.Node, source []byte) (string, error)
	HTML(root ast.Node, source []byte) (string, error)
}

type GenerationRequest struct {
	SessionId string
	Agent     *entity.Agent
	History   []llm.Message
}

// IGenerationService drives one model reply from first token to the end event.
type IGenerationService interface {
	Generate(ctx context.Context, req GenerationRequest) error
	// Wait blocks until every detached render started so far has published.
	Wait()
}

type generationService struct {
	provider  llm.StreamProvider
	messages  contract.MessageRepository
	publisher relay.Publisher
	parser    markdown.Parser
	renderer  UnitRenderer
	logger    logger.ILogger
	tracer    trace.Tracer

	nestedHeadings bool
	renders        sync.WaitGroup
}

type GenerationOption func(*generationService)

func WithNestedHeadings(nested bool) GenerationOption {
	return func(s *generationService) {
		s.nestedHeadings = nested
	}
}

func NewGenerationService(
	provider llm.StreamProvider,
	messages contract.MessageRepository,
	publisher relay.Publisher,
	parser markdown.Parser,
	renderer UnitRenderer,
	log logger.ILogger,
	opts ...GenerationOption,
) IGenerationService {
	s := &generationService{
		provider:  provider,
		messages:  messages,
		publisher: publisher,
		parser:    parser,
		renderer:  renderer,
		logger:    log,
		tracer:    otel.Tracer("agent-chat-be/generation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *generationService) Wait() {
	s.renders.Wait()
}

// Generate streams the model reply for req into the session channel: one start,
// one response per completed unit, then end. Any failure after start is reported
// as a single error event instead of end.
//
// end is published as soon as the last unit is persisted, while responses are
// published by background renders. Responses for the final units usually arrive
// after end, so viewers should keep listening past it.
func (s *generationService) Generate(ctx context.Context, req GenerationRequest) error {
	ctx, span := s.tracer.Start(ctx, "generation.Generate", trace.WithAttributes(
		attribute.String("session.id", req.SessionId),
		attribute.String("agent.key", req.Agent.Key),
		attribute.String("llm.provider", s.provider.Name()),
	))
	defer span.End()

	channel := events.Channel(req.SessionId)
	s.publish(ctx, channel, events.NewStart(req.Agent.ShortName))

	units, err := s.consume(ctx, req)
	span.SetAttributes(attribute.Int("units.emitted", units))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("GenerationService", "Generation failed", map[string]interface{}{
			"session_id": req.SessionId,
			"agent":      req.Agent.Key,
			"units":      units,
			"error":      err,
		})
		s.publish(ctx, channel, events.NewError(StreamFailureReason))
		return err
	}

	s.publish(ctx, channel, events.NewEnd(req.Agent.ShortName))
	s.logger.Info("GenerationService", "Generation finished", map[string]interface{}{
		"session_id": req.SessionId,
		"agent":      req.Agent.Key,
		"units":      units,
	})
	return nil
}

func (s *generationService) consume(ctx context.Context, req GenerationRequest) (int, error) {
	modelStream, err := s.provider.Stream(ctx, req.History)
	if err != nil {
		return 0, fmt.Errorf("open model stream: %w", err)
	}
	defer modelStream.Close()

	aggregator := stream.NewAggregator(s.parser,
		stream.WithLogger(s.logger),
		stream.WithNestedHeadings(s.nestedHeadings),
	)

	emitted := 0
	for {
		fragment, err := modelStream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return emitted, fmt.Errorf("receive fragment: %w", err)
		}

		n, err := s.dispatch(ctx, req, aggregator.ProcessChunk(fragment))
		emitted += n
		if err != nil {
			return emitted, err
		}
	}

	n, err := s.dispatch(ctx, req, aggregator.Flush())
	return emitted + n, err
}

// dispatch persists each unit in order, then hands it to a detached render+publish.
func (s *generationService) dispatch(ctx context.Context, req GenerationRequest, units []*stream.Unit) (int, error) {
	for i, unit := range units {
		content, err := s.renderer.Markdown(unit.Root, unit.Source)
		if err != nil {
			return i, fmt.Errorf("serialize %s unit: %w", unit.GroupType, err)
		}

		err = s.messages.Create(ctx, &entity.Message{
			AgentKey:  req.Agent.Key,
			SessionId: req.SessionId,
			Role:      entity.MessageRoleAssistant,
			Content:   content,
		})
		if err != nil {
			return i, fmt.Errorf("persist %s unit: %w", unit.GroupType, err)
		}

		s.renderAndPublish(ctx, req, unit)
	}
	return len(units), nil
}

// renderAndPublish runs past the end of the request; renders for different units
// may finish and publish in any order.
func (s *generationService) renderAndPublish(ctx context.Context, req GenerationRequest, unit *stream.Unit) {
	detached := context.WithoutCancel(ctx)
	channel := events.Channel(req.SessionId)

	s.renders.Add(1)
	go func() {
		defer s.renders.Done()

		_, span := s.tracer.Start(detached, "generation.render", trace.WithAttributes(
			attribute.String("unit.group", string(unit.GroupType)),
			attribute.Int("unit.nodes", unit.NodeCount),
		))
		html, err := s.renderer.HTML(unit.Root, unit.Source)
		span.End()
		if err != nil {
			s.logger.Error("GenerationService", "Unit render failed", map[string]interface{}{
				"session_id": req.SessionId,
				"group":      string(unit.GroupType),
				"error":      err,
			})
			return
		}
		if html == "" {
			return
		}

		s.publish(detached, channel, events.NewResponse(html, req.Agent.ThemeColor))
	}()
}

func (s *generationService) publish(ctx context.Context, channel string, e events.Event) {
	if err := s.publisher.Publish(ctx, channel, e); err != nil {
		s.logger.Warn("GenerationService", "Publish failed", map[string]interface{}{
			"channel": channel,
			"type":    e.EventType(),
			"error":   err.Error(),
		})
	}
}

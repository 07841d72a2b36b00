// Package mock replays a fixed text as a token stream. It backs local runs
// without a model server and the service tests.
package mock

import (
	"context"
	"io"
	"sync"
	"time"

	"agent-chat-be/pkg/llm"
)

const DefaultScript = "# Hello\n\nThis reply was generated without a model.\n\n" +
	"- it streams\n- in small pieces\n\n" +
	"```go\nfmt.Println(\"done\")\n```\n"

type Provider struct {
	Script    string
	ChunkSize int
	Delay     time.Duration
	// FailAfter, when positive, ends the stream with Err after that many fragments.
	FailAfter int
	Err       error

	mu      sync.Mutex
	history [][]llm.Message
}

var _ llm.StreamProvider = &Provider{}

func NewProvider(script string, chunkSize int) *Provider {
	if script == "" {
		script = DefaultScript
	}
	if chunkSize <= 0 {
		chunkSize = 4
	}
	return &Provider{Script: script, ChunkSize: chunkSize}
}

func (p *Provider) Name() string {
	return "mock"
}

// Calls returns the message histories the provider was asked to continue.
func (p *Provider) Calls() [][]llm.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]llm.Message(nil), p.history...)
}

func (p *Provider) Stream(ctx context.Context, history []llm.Message, _ ...llm.Option) (llm.Stream, error) {
	p.mu.Lock()
	p.history = append(p.history, append([]llm.Message(nil), history...))
	p.mu.Unlock()

	size := p.ChunkSize
	if size <= 0 {
		size = 4
	}
	var fragments []string
	for rest := []rune(p.Script); len(rest) > 0; {
		n := min(size, len(rest))
		fragments = append(fragments, string(rest[:n]))
		rest = rest[n:]
	}

	return &stream{ctx: ctx, fragments: fragments, delay: p.Delay, failAfter: p.FailAfter, err: p.Err}, nil
}

type stream struct {
	ctx       context.Context
	fragments []string
	sent      int
	delay     time.Duration
	failAfter int
	err       error
}

func (s *stream) Recv() (string, error) {
	if err := s.ctx.Err(); err != nil {
		return "", err
	}
	if s.failAfter > 0 && s.sent >= s.failAfter {
		return "", s.err
	}
	if s.sent >= len(s.fragments) {
		return "", io.EOF
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		}
	}
	fragment := s.fragments[s.sent]
	s.sent++
	return fragment, nil
}

func (s *stream) Close() error {
	return nil
}

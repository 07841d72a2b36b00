package llm

import (
	"context"
	"errors"
	"io"
	"strings"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// ApplyOptions resolves opts on top of the defaults.
func ApplyOptions(opts ...Option) *Options {
	options := &Options{Temperature: 0.7}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Stream yields text fragments in generation order. Recv returns io.EOF once the
// model is done; any other error ends the stream.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// StreamProvider defines the contract for any streaming LLM backend
type StreamProvider interface {
	Name() string
	Stream(ctx context.Context, history []Message, options ...Option) (Stream, error)
}

// Collect drains a stream into one string.
func Collect(s Stream) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		fragment, err := s.Recv()
		if errors.Is(err, io.EOF) {
			return sb.String(), nil
		}
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(fragment)
	}
}

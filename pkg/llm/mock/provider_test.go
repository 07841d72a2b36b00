package mock

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"agent-chat-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderReplaysScript(t *testing.T) {
	p := NewProvider("héllo wörld", 3)
	history := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}

	stream, err := p.Stream(context.Background(), history)
	require.NoError(t, err)

	var fragments []string
	for {
		f, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		fragments = append(fragments, f)
	}

	assert.Equal(t, []string{"hél", "lo ", "wör", "ld"}, fragments)
	assert.Equal(t, [][]llm.Message{history}, p.Calls())
}

func TestProviderDefaultScript(t *testing.T) {
	text, err := llm.Collect(mustStream(t, NewProvider("", 0)))
	require.NoError(t, err)
	assert.Equal(t, DefaultScript, text)
}

func TestProviderFailure(t *testing.T) {
	boom := errors.New("boom")
	p := NewProvider("abcdefgh", 2)
	p.FailAfter = 2
	p.Err = boom

	text, err := llm.Collect(mustStream(t, p))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "abcd", text)
}

func TestProviderHonoursCancellation(t *testing.T) {
	p := NewProvider("abcdefgh", 1)
	p.Delay = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	stream, err := p.Stream(ctx, nil)
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func mustStream(t *testing.T, p *Provider) llm.Stream {
	t.Helper()
	s, err := p.Stream(context.Background(), nil)
	require.NoError(t, err)
	return s
}

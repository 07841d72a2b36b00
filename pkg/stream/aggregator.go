package stream

import (
	"fmt"
	"strings"

	"agent-chat-be/internal/pkg/logger"
	"agent-chat-be/pkg/markdown"

	"github.com/yuin/goldmark/ast"
)

// Aggregator buffers streamed markdown and hands out structural units once they
// are provably finished. It reparses the whole buffer on every fragment.
//
// An Aggregator belongs to exactly one generation and is not safe for concurrent use.
type Aggregator struct {
	parser markdown.Parser
	logger logger.ILogger
	opts   GroupOptions

	buffer  strings.Builder
	cursor  int
	history []*Unit
}

type Option func(*Aggregator)

func WithLogger(log logger.ILogger) Option {
	return func(a *Aggregator) {
		a.logger = log
	}
}

func WithNestedHeadings(nested bool) Option {
	return func(a *Aggregator) {
		a.opts.NestedHeadings = nested
	}
}

func NewAggregator(parser markdown.Parser, opts ...Option) *Aggregator {
	a := &Aggregator{
		parser: parser,
		logger: logger.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessChunk appends a fragment and returns the units completed by it, possibly none.
// A buffer that fails to parse yields nothing this time; the text is kept for the next call.
func (a *Aggregator) ProcessChunk(fragment string) []*Unit {
	a.buffer.WriteString(fragment)

	source, nodes, ok := a.parse()
	if !ok {
		return nil
	}

	var units []*Unit
	for a.cursor < len(nodes) {
		group, grouped := TryBuildGroup(nodes, a.cursor, a.opts)
		if !grouped {
			group = singleton(nodes[a.cursor])
		}

		if !IsGroupComplete(group, nodes, a.cursor, source) {
			break
		}

		units = append(units, a.emit(group, source))
	}

	return units
}

// Flush emits everything after the cursor regardless of completeness. It is meant
// to be called once at end of stream; a second call returns nothing.
func (a *Aggregator) Flush() []*Unit {
	source, nodes, ok := a.parse()
	if !ok {
		a.logger.Error("StreamAggregator", "Flush failed, remaining buffer dropped", map[string]interface{}{
			"cursor":      a.cursor,
			"buffer_size": a.buffer.Len(),
		})
		return nil
	}

	var units []*Unit
	for a.cursor < len(nodes) {
		group, grouped := TryBuildGroup(nodes, a.cursor, a.opts)
		if !grouped {
			group = singleton(nodes[a.cursor])
		}
		units = append(units, a.emit(group, source))
	}

	return units
}

// Reset returns the aggregator to its initial state so it can serve another stream.
func (a *Aggregator) Reset() {
	a.buffer.Reset()
	a.cursor = 0
	a.history = nil
}

func (a *Aggregator) Buffer() string {
	return a.buffer.String()
}

// Cursor is the number of top-level nodes already emitted.
func (a *Aggregator) Cursor() int {
	return a.cursor
}

// History returns every unit emitted so far, in order.
func (a *Aggregator) History() []*Unit {
	out := make([]*Unit, len(a.history))
	copy(out, a.history)
	return out
}

func (a *Aggregator) emit(group *Group, source []byte) *Unit {
	unit := newUnit(group, source)
	a.cursor += group.NodeCount
	a.history = append(a.history, unit)
	return unit
}

func (a *Aggregator) parse() (source []byte, nodes []ast.Node, ok bool) {
	// Fresh copy per pass: units keep pointing into it after the buffer grows.
	source = []byte(a.buffer.String())

	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("StreamAggregator", "Parser panicked", map[string]interface{}{
				"panic":       fmt.Sprint(r),
				"buffer_size": len(source),
			})
			source, nodes, ok = nil, nil, false
		}
	}()

	doc, err := a.parser.Parse(source)
	if err != nil {
		a.logger.Debug("StreamAggregator", "Incomplete markdown, waiting for more text", map[string]interface{}{
			"error":       err.Error(),
			"buffer_size": len(source),
		})
		return nil, nil, false
	}

	return source, markdown.TopLevel(doc), true
}

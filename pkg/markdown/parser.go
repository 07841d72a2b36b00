package markdown

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Parser turns markdown source into a document tree.
// Implementations must not keep references to source beyond the returned tree.
type Parser interface {
	Parse(source []byte) (ast.Node, error)
}

// ParserFunc adapts a plain function to Parser.
type ParserFunc func(source []byte) (ast.Node, error)

func (f ParserFunc) Parse(source []byte) (ast.Node, error) {
	return f(source)
}

// GoldmarkParser parses CommonMark with goldmark.
type GoldmarkParser struct {
	md goldmark.Markdown
}

var _ Parser = &GoldmarkParser{}

func NewGoldmarkParser() *GoldmarkParser {
	return &GoldmarkParser{md: goldmark.New()}
}

// Parse never lets a parser panic escape; a panic comes back as an error so callers
// can treat a broken partial buffer like any other parse failure.
func (p *GoldmarkParser) Parse(source []byte) (doc ast.Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("markdown parse panicked: %v", r)
		}
	}()

	doc = p.md.Parser().Parse(text.NewReader(source))
	if doc == nil {
		return nil, fmt.Errorf("markdown parse returned no document")
	}
	return doc, nil
}

// TopLevel returns the direct children of a document as a slice.
// The slice is a snapshot: moving nodes to another parent afterwards does not change it.
func TopLevel(doc ast.Node) []ast.Node {
	if doc == nil {
		return nil
	}
	nodes := make([]ast.Node, 0, doc.ChildCount())
	for c := doc.FirstChild(); c != nil; c = c.NextSibling() {
		nodes = append(nodes, c)
	}
	return nodes
}

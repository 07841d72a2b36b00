package stream

import (
	"github.com/yuin/goldmark/ast"
)

// Unit is one emitted block: a synthetic document holding the group's nodes.
// Source is the buffer snapshot the nodes' segments point into; it is never
// mutated, so a Unit can be rendered from any goroutine.
type Unit struct {
	Root      *ast.Document
	Source    []byte
	Grouped   bool
	GroupType GroupType
	NodeCount int
}

func newUnit(group *Group, source []byte) *Unit {
	doc := ast.NewDocument()
	for _, n := range group.Nodes {
		// AppendChild detaches n from the parsed tree, which is discarded after each pass.
		doc.AppendChild(doc, n)
	}

	return &Unit{
		Root:      doc,
		Source:    source,
		Grouped:   group.Type != GroupNode,
		GroupType: group.Type,
		NodeCount: group.NodeCount,
	}
}

// Kinds lists the node kinds inside the unit, in order.
func (u *Unit) Kinds() []ast.NodeKind {
	kinds := make([]ast.NodeKind, 0, u.NodeCount)
	for c := u.Root.FirstChild(); c != nil; c = c.NextSibling() {
		kinds = append(kinds, c.Kind())
	}
	return kinds
}

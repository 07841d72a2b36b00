package stream

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
)

type GroupType string

const (
	GroupHeading GroupType = "heading-grp"
	GroupList    GroupType = "list-grp"
	GroupQuote   GroupType = "quote-grp"
	GroupSnippet GroupType = "snippet-grp"
	GroupNode    GroupType = "node-grp" // singleton, no rule matched
)

const (
	maxHeadingContent = 5
	maxQuoteRun       = 3

	// A block that ends the buffer is only trusted once the model has moved past it.
	blockSeparator = "\n\n"
)

// Fences nested in list items or quotes carry the container's indent or "> " prefix.
var closingFence = regexp.MustCompile("(?m)^[ \t>]*(`{3,}|~{3,})[ \t]*$")

// Group is a run of consecutive top-level nodes that is emitted as one unit.
type Group struct {
	Type      GroupType
	Nodes     []ast.Node
	NodeCount int
	Ordered   bool // list groups only
}

// GroupOptions tunes the grouping rules.
type GroupOptions struct {
	// NestedHeadings keeps deeper headings inside the section of a shallower one.
	// When false every heading starts a new section.
	NestedHeadings bool
}

// TryBuildGroup looks at nodes[start] and returns the group it opens, or false
// when no rule applies and the node has to be handled as a singleton.
func TryBuildGroup(nodes []ast.Node, start int, opts GroupOptions) (*Group, bool) {
	if start < 0 || start >= len(nodes) || nodes[start] == nil {
		return nil, false
	}

	switch n := nodes[start].(type) {
	case *ast.Heading:
		return buildHeadingGroup(nodes, start, n.Level, opts)
	case *ast.List:
		return buildListGroup(n)
	case *ast.Blockquote:
		return buildQuoteGroup(nodes, start)
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		return &Group{Type: GroupSnippet, Nodes: []ast.Node{n}, NodeCount: 1}, true
	}
	return nil, false
}

func buildHeadingGroup(nodes []ast.Node, start, level int, opts GroupOptions) (*Group, bool) {
	members := []ast.Node{nodes[start]}

	for idx := start + 1; idx < len(nodes); idx++ {
		if h, ok := nodes[idx].(*ast.Heading); ok {
			if !opts.NestedHeadings || h.Level <= level {
				break
			}
		}

		members = append(members, nodes[idx])
		if len(members)-1 >= maxHeadingContent {
			break
		}
	}

	if len(members) == 1 {
		return nil, false
	}
	return &Group{Type: GroupHeading, Nodes: members, NodeCount: len(members)}, true
}

func buildListGroup(list *ast.List) (*Group, bool) {
	if list.ChildCount() == 0 {
		return nil, false
	}
	return &Group{
		Type:      GroupList,
		Nodes:     []ast.Node{list},
		NodeCount: 1,
		Ordered:   list.IsOrdered(),
	}, true
}

func buildQuoteGroup(nodes []ast.Node, start int) (*Group, bool) {
	first := nodes[start]

	// A quote holding several blocks is already self-contained.
	if first.ChildCount() > 1 {
		return &Group{Type: GroupQuote, Nodes: []ast.Node{first}, NodeCount: 1}, true
	}

	quotes := []ast.Node{first}
	for idx := start + 1; idx < len(nodes) && len(quotes) < maxQuoteRun; idx++ {
		q, ok := nodes[idx].(*ast.Blockquote)
		if !ok || q.ChildCount() > 1 {
			break
		}
		quotes = append(quotes, q)
	}

	if len(quotes) == 1 {
		return nil, false
	}
	return &Group{Type: GroupQuote, Nodes: quotes, NodeCount: len(quotes)}, true
}

// singleton wraps a node that matched no rule.
func singleton(node ast.Node) *Group {
	return &Group{Type: GroupNode, Nodes: []ast.Node{node}, NodeCount: 1}
}

// IsGroupComplete reports whether the group at start can be emitted now.
// Anything followed by a sibling is done. The group holding the last node is only
// done once the buffer ends with a blank line, and a trailing fenced code block
// additionally needs its closing fence.
func IsGroupComplete(group *Group, nodes []ast.Node, start int, buffer []byte) bool {
	last := start + group.NodeCount - 1
	if last < len(nodes)-1 {
		return true
	}

	if !strings.HasSuffix(string(buffer), blockSeparator) {
		return false
	}

	if fenced := trailingFence(nodes[len(nodes)-1]); fenced != nil {
		return isFenceClosed(fenced, buffer)
	}
	return true
}

// trailingFence finds a fenced code block that ends n, following the last child
// down through lists, list items and quotes.
func trailingFence(n ast.Node) *ast.FencedCodeBlock {
	for ; n != nil; n = n.LastChild() {
		if fenced, ok := n.(*ast.FencedCodeBlock); ok {
			return fenced
		}
	}
	return nil
}

// isFenceClosed looks for a closing fence after the last content line.
// A block without content lines was closed on the line after its opener.
func isFenceClosed(block *ast.FencedCodeBlock, buffer []byte) bool {
	lines := block.Lines()
	if lines == nil || lines.Len() == 0 {
		return true
	}
	stop := lines.At(lines.Len() - 1).Stop
	if stop >= len(buffer) {
		return false
	}
	return closingFence.Match(buffer[stop:])
}

package stream

import (
	"testing"

	"agent-chat-be/pkg/markdown"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

func parseNodes(t *testing.T, src string) ([]ast.Node, []byte) {
	t.Helper()
	source := []byte(src)
	doc, err := markdown.NewGoldmarkParser().Parse(source)
	require.NoError(t, err)
	return markdown.TopLevel(doc), source
}

func TestTryBuildGroup(t *testing.T) {
	tests := []struct {
		name      string
		markdown  string
		start     int
		opts      GroupOptions
		wantOK    bool
		wantType  GroupType
		wantCount int
	}{
		{
			name:      "heading stops at next heading",
			markdown:  "# A\n\nbody1\n\nbody2\n\n## B\n\nmore\n",
			wantOK:    true,
			wantType:  GroupHeading,
			wantCount: 3,
		},
		{
			name:      "nested headings stay in the section",
			markdown:  "# A\n\nbody1\n\nbody2\n\n## B\n\nmore\n",
			opts:      GroupOptions{NestedHeadings: true},
			wantOK:    true,
			wantType:  GroupHeading,
			wantCount: 5,
		},
		{
			name:      "nested headings stop at same level",
			markdown:  "## A\n\nbody\n\n## B\n\nmore\n",
			opts:      GroupOptions{NestedHeadings: true},
			wantOK:    true,
			wantType:  GroupHeading,
			wantCount: 2,
		},
		{
			name:      "heading content is capped at five nodes",
			markdown:  "# T\n\np1\n\np2\n\np3\n\np4\n\np5\n\np6\n",
			wantOK:    true,
			wantType:  GroupHeading,
			wantCount: 6,
		},
		{
			name:     "heading without content",
			markdown: "# A\n\n# B\n",
			wantOK:   false,
		},
		{
			name:      "list",
			markdown:  "- a\n- b\n",
			wantOK:    true,
			wantType:  GroupList,
			wantCount: 1,
		},
		{
			name:      "single child quotes merge up to three",
			markdown:  "> one\n\n> two\n\n> three\n\n> four\n",
			wantOK:    true,
			wantType:  GroupQuote,
			wantCount: 3,
		},
		{
			name:      "fourth quote starts over",
			markdown:  "> one\n\n> two\n\n> three\n\n> four\n\n> five\n",
			start:     3,
			wantOK:    true,
			wantType:  GroupQuote,
			wantCount: 2,
		},
		{
			name:      "multi child quote stands alone",
			markdown:  "> p1\n>\n> p2\n\n> next\n",
			wantOK:    true,
			wantType:  GroupQuote,
			wantCount: 1,
		},
		{
			name:     "single quote falls back to singleton",
			markdown: "> only\n\npara\n",
			wantOK:   false,
		},
		{
			name:     "merge stops at a multi child quote",
			markdown: "> a\n\n> b\n>\n> c\n",
			wantOK:   false,
		},
		{
			name:      "fenced code",
			markdown:  "```go\nfmt.Println()\n```\n",
			wantOK:    true,
			wantType:  GroupSnippet,
			wantCount: 1,
		},
		{
			name:      "indented code",
			markdown:  "    x := 1\n",
			wantOK:    true,
			wantType:  GroupSnippet,
			wantCount: 1,
		},
		{
			name:     "paragraph has no rule",
			markdown: "just text\n",
			wantOK:   false,
		},
		{
			name:     "start past the end",
			markdown: "just text\n",
			start:    4,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, _ := parseNodes(t, tt.markdown)

			group, ok := TryBuildGroup(nodes, tt.start, tt.opts)

			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Nil(t, group)
				return
			}
			assert.Equal(t, tt.wantType, group.Type)
			assert.Equal(t, tt.wantCount, group.NodeCount)
			assert.Len(t, group.Nodes, tt.wantCount)
		})
	}
}

func TestTryBuildGroupDoesNotMutate(t *testing.T) {
	nodes, _ := parseNodes(t, "# A\n\nbody\n\n> q1\n\n> q2\n")
	before := make([]ast.Node, len(nodes))
	copy(before, nodes)

	TryBuildGroup(nodes, 0, GroupOptions{})
	TryBuildGroup(nodes, 2, GroupOptions{})

	assert.Equal(t, before, nodes)
	assert.Equal(t, 4, nodes[0].Parent().ChildCount())
}

func TestListGroupRecordsOrdering(t *testing.T) {
	nodes, _ := parseNodes(t, "1. first\n2. second\n")

	group, ok := TryBuildGroup(nodes, 0, GroupOptions{})

	require.True(t, ok)
	assert.True(t, group.Ordered)
}

func TestIsGroupComplete(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		start    int
		want     bool
	}{
		{name: "followed by a sibling", markdown: "para one\n\npara two", start: 0, want: true},
		{name: "last node without separator", markdown: "para one\n\npara two", start: 1, want: false},
		{name: "last node with single newline", markdown: "para one\n", start: 0, want: false},
		{name: "last node with separator", markdown: "para one\n\n", start: 0, want: true},
		{name: "heading group still open", markdown: "# A\n\nbody", start: 0, want: false},
		{name: "heading group closed", markdown: "# A\n\nbody\n\n", start: 0, want: true},
		{name: "open fence with blank line", markdown: "```go\nfunc main() {\n\n", start: 0, want: false},
		{name: "closed fence", markdown: "```go\nx := 1\n```\n\n", start: 0, want: true},
		{name: "empty closed fence", markdown: "```\n```\n\n", start: 0, want: true},
		{name: "open fence in list item", markdown: "1. Write it:\n\n   ```go\n   func main() {\n\n", start: 0, want: false},
		{name: "closed fence in list item", markdown: "1. Write it:\n\n   ```go\n   run()\n   ```\n\n", start: 0, want: true},
		{name: "open fence in quote", markdown: "> ```\n> x := 1\n>\n\n", start: 0, want: false},
		{name: "closed fence in quote", markdown: "> ```\n> x := 1\n> ```\n\n", start: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, source := parseNodes(t, tt.markdown)

			group, ok := TryBuildGroup(nodes, tt.start, GroupOptions{})
			if !ok {
				group = singleton(nodes[tt.start])
			}

			assert.Equal(t, tt.want, IsGroupComplete(group, nodes, tt.start, source))
		})
	}
}

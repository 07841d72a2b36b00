package markdown

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark/ast"
)

func parseDoc(t *testing.T, src string) (ast.Node, []byte) {
	t.Helper()
	source := []byte(src)
	doc, err := NewGoldmarkParser().Parse(source)
	require.NoError(t, err)
	return doc, source
}

func TestParseTopLevel(t *testing.T) {
	doc, _ := parseDoc(t, "# Title\n\nbody\n\n- a\n- b\n\n> quote\n")

	nodes := TopLevel(doc)

	require.Len(t, nodes, 4)
	assert.Equal(t, ast.KindHeading, nodes[0].Kind())
	assert.Equal(t, ast.KindParagraph, nodes[1].Kind())
	assert.Equal(t, ast.KindList, nodes[2].Kind())
	assert.Equal(t, ast.KindBlockquote, nodes[3].Kind())
}

func TestTopLevelNil(t *testing.T) {
	assert.Empty(t, TopLevel(nil))
}

func TestRendererHTML(t *testing.T) {
	r := NewRenderer("nord")
	doc, source := parseDoc(t, "# A\n\n**bold** body\n")

	html, err := r.HTML(doc, source)

	require.NoError(t, err)
	assert.Contains(t, html, "<h1>A</h1>")
	assert.Contains(t, html, "<p><strong>bold</strong> body</p>")
}

func TestRendererHighlightsCode(t *testing.T) {
	r := NewRenderer("nord")
	doc, source := parseDoc(t, "```go\nfmt.Println(\"hi\")\n```\n")

	html, err := r.HTML(doc, source)

	require.NoError(t, err)
	assert.Contains(t, html, "<pre")
	assert.Contains(t, html, "Println")
	assert.Contains(t, html, "style=")
}

func TestRendererMarkdown(t *testing.T) {
	r := NewRenderer("nord")
	doc, source := parseDoc(t, "# A\n\nsome *body* text\n\n- one\n- two\n")

	md, err := r.Markdown(doc, source)

	require.NoError(t, err)
	assert.Contains(t, md, "# A")
	assert.Contains(t, md, "some")
	assert.Contains(t, md, "body")
	assert.Contains(t, md, "one")
	assert.Contains(t, md, "two")
}

func TestMarkdownToHTML(t *testing.T) {
	r := NewRenderer("nord")

	html, err := r.MarkdownToHTML("**Lorem ipsum dolor** sit amet")

	require.NoError(t, err)
	assert.Equal(t, "<p><strong>Lorem ipsum dolor</strong> sit amet</p>", html)
}

func TestUnknownStyleFallsBack(t *testing.T) {
	r := NewRenderer("no-such-style")
	assert.Equal(t, DefaultHighlightStyle, r.Style())
}

func TestSourceText(t *testing.T) {
	doc, source := parseDoc(t, "# Title\n\nfirst line\nsecond line\n")

	text := SourceText(doc, source)

	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "first line")
	assert.Contains(t, text, "second line")
}

func TestRendererConcurrentUse(t *testing.T) {
	r := NewRenderer("nord")

	type parsed struct {
		doc    ast.Node
		source []byte
	}
	docs := make([]parsed, 8)
	for i := range docs {
		doc, source := parseDoc(t, "## Part\n\n```python\nprint('x')\n```\n")
		docs[i] = parsed{doc: doc, source: source}
	}

	var wg sync.WaitGroup
	for _, p := range docs {
		wg.Add(1)
		go func(doc ast.Node, source []byte) {
			defer wg.Done()
			_, err := r.HTML(doc, source)
			assert.NoError(t, err)
			_, err = r.Markdown(doc, source)
			assert.NoError(t, err)
		}(p.doc, p.source)
	}
	wg.Wait()
}

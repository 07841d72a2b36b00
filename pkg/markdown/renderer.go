package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	mdrender "github.com/teekennedy/goldmark-markdown"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
)

const DefaultHighlightStyle = "nord"

// Renderer converts document trees into HTML (for viewers) and back into markdown
// (for storage). The two conversions share nothing and can run in any order.
type Renderer struct {
	html goldmark.Markdown

	// goldmark-markdown keeps per-render state on the renderer
	mdMu sync.Mutex
	md   *mdrender.Renderer

	style string
}

func NewRenderer(highlightStyle string) *Renderer {
	if _, ok := styles.Registry[highlightStyle]; !ok {
		highlightStyle = DefaultHighlightStyle
	}

	return &Renderer{
		html: goldmark.New(
			goldmark.WithExtensions(
				highlighting.NewHighlighting(
					highlighting.WithStyle(highlightStyle),
					highlighting.WithFormatOptions(
						chromahtml.WithLineNumbers(false),
					),
				),
			),
		),
		md:    mdrender.NewRenderer(),
		style: highlightStyle,
	}
}

// Style reports the chroma style actually in use.
func (r *Renderer) Style() string {
	return r.style
}

// HTML renders root (usually a synthetic document holding one unit) to HTML.
func (r *Renderer) HTML(root ast.Node, source []byte) (out string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("html render panicked: %v", rec)
		}
	}()

	var buf bytes.Buffer
	if err := r.html.Renderer().Render(&buf, source, root); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Markdown re-serializes root into canonical markdown.
// If the serializer cannot handle a node the raw source lines are used instead,
// so a unit always has something to persist.
func (r *Renderer) Markdown(root ast.Node, source []byte) (string, error) {
	out, err := r.renderMarkdown(root, source)
	if err == nil {
		return out, nil
	}

	raw := SourceText(root, source)
	if raw == "" {
		return "", err
	}
	return raw, nil
}

func (r *Renderer) renderMarkdown(root ast.Node, source []byte) (out string, err error) {
	r.mdMu.Lock()
	defer r.mdMu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("markdown render panicked: %v", rec)
		}
	}()

	var buf bytes.Buffer
	if err := r.md.Render(&buf, source, root); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()) + "\n", nil
}

// MarkdownToHTML renders a stored markdown message, e.g. when replaying history.
func (r *Renderer) MarkdownToHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := r.html.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// SourceText concatenates the raw source lines of every block under root.
func SourceText(root ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock {
			return ast.WalkContinue, nil
		}
		lines := n.Lines()
		if lines == nil {
			return ast.WalkContinue, nil
		}
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			sb.Write(seg.Value(source))
		}
		if lines.Len() > 0 {
			sb.WriteString("\n")
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

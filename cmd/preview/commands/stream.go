package commands

import (
	"fmt"
	"io"
	"os"

	"agent-chat-be/pkg/markdown"
	"agent-chat-be/pkg/stream"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var streamOpts struct {
	chunk          int
	html           bool
	nestedHeadings bool
	style          string
}

var streamCmd = &cobra.Command{
	Use:   "stream [file]",
	Short: "Stream a markdown file through the aggregator in fixed-size fragments",
	Long: `Reads markdown from a file (or stdin when no file is given), splits it into
fragments of --chunk runes and prints every unit the aggregator emits.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStream,
}

func init() {
	streamCmd.Flags().IntVarP(&streamOpts.chunk, "chunk", "c", 8, "fragment size in runes")
	streamCmd.Flags().BoolVar(&streamOpts.html, "html", false, "print rendered HTML instead of markdown")
	streamCmd.Flags().BoolVar(&streamOpts.nestedHeadings, "nested-headings", false, "let deeper headings join a heading group")
	streamCmd.Flags().StringVar(&streamOpts.style, "style", markdown.DefaultHighlightStyle, "chroma style for code blocks")
}

var groupColors = map[stream.GroupType]*color.Color{
	stream.GroupHeading: color.New(color.FgCyan, color.Bold),
	stream.GroupList:    color.New(color.FgGreen),
	stream.GroupQuote:   color.New(color.FgMagenta),
	stream.GroupSnippet: color.New(color.FgYellow),
	stream.GroupNode:    color.New(color.FgWhite),
}

func runStream(cmd *cobra.Command, args []string) error {
	if streamOpts.chunk <= 0 {
		return fmt.Errorf("--chunk must be positive")
	}

	text, err := readInput(args)
	if err != nil {
		return err
	}

	renderer := markdown.NewRenderer(streamOpts.style)
	agg := stream.NewAggregator(markdown.NewGoldmarkParser(), stream.WithNestedHeadings(streamOpts.nestedHeadings))

	out := cmd.OutOrStdout()
	count := 0
	emit := func(units []*stream.Unit) error {
		for _, u := range units {
			count++
			if err := printUnit(out, renderer, count, u); err != nil {
				return err
			}
		}
		return nil
	}

	for _, fragment := range split(text, streamOpts.chunk) {
		if err := emit(agg.ProcessChunk(fragment)); err != nil {
			return err
		}
	}
	if err := emit(agg.Flush()); err != nil {
		return err
	}

	color.New(color.Faint).Fprintf(out, "%d units from %d bytes\n", count, len(text))
	return nil
}

func readInput(args []string) (string, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return string(data), nil
}

// split cuts text into fragments of size runes, like a model streaming tokens.
func split(text string, size int) []string {
	runes := []rune(text)
	fragments := make([]string, 0, len(runes)/size+1)
	for i := 0; i < len(runes); i += size {
		end := min(i+size, len(runes))
		fragments = append(fragments, string(runes[i:end]))
	}
	return fragments
}

func printUnit(out io.Writer, renderer *markdown.Renderer, n int, u *stream.Unit) error {
	c, ok := groupColors[u.GroupType]
	if !ok {
		c = groupColors[stream.GroupNode]
	}

	var (
		body string
		err  error
	)
	if streamOpts.html {
		body, err = renderer.HTML(u.Root, u.Source)
	} else {
		body, err = renderer.Markdown(u.Root, u.Source)
	}
	if err != nil {
		return fmt.Errorf("unit %d: %w", n, err)
	}

	c.Fprintf(out, "── #%d %s (%d nodes)\n", n, u.GroupType, u.NodeCount)
	fmt.Fprintln(out, body)
	return nil
}

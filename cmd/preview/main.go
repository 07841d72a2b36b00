// Package main provides the preview CLI for the streaming markdown aggregator.
//
// Usage:
//
//	preview stream <file.md> [--chunk 8] [--html] [--nested-headings]
//	preview agents [agents.yaml]
package main

import (
	"fmt"
	"os"

	"agent-chat-be/cmd/preview/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "preview",
	Short: "Inspect how markdown streams are cut into render units",
	Long: `Feeds markdown through the same aggregator the chat service uses and prints
each emitted unit as it would be published.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(agentsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

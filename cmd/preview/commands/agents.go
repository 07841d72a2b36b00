package commands

import (
	"fmt"

	"agent-chat-be/internal/repository/memory"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents [file]",
	Short: "Validate an agent catalogue and list its agents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "agents.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		agents, err := memory.LoadAgents(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, a := range agents {
			color.New(color.Bold).Fprintf(out, "%-10s", a.Key)
			fmt.Fprintf(out, " %s (%s) %s\n", a.ShortName, a.FullName, a.ThemeColor)
		}
		color.Green("%d agents OK", len(agents))
		return nil
	},
}

// Package main provides xpdelta, an offline tool that aggregates exported
// snapshot history without running the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "xpdelta",
		Short:         "Skill progress deltas from exported snapshot history",
		Long:          "xpdelta reads a JSON array of flat skill snapshots and reports how every skill changed across a range.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAggregateCmd(), newSkillsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

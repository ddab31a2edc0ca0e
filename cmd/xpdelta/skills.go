package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okian/xptrack/internal/domain/skills"
)

func newSkillsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skills",
		Short: "List tracked skills in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, id := range skills.All() {
				if _, err := fmt.Fprintf(out, "%-13s %s %s\n", id.Label(), id.XpField(), id.RankField()); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

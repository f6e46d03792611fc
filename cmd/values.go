package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var valuesCmd = &cobra.Command{
	Use:   "values <file> <column>",
	Short: "List the distinct values of a column",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd, args[0])
		if err != nil {
			return err
		}
		dv, err := s.Distinct(strings.ToLower(strings.TrimSpace(args[1])))
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(dv.Choices) == 0 {
			fmt.Fprintln(out, "(no values)")
			return nil
		}
		for _, c := range dv.Choices {
			fmt.Fprintf(out, "- %s\n", c.Label)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(valuesCmd)
}

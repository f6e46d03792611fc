package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Count entities per domain (the part of the entity id before the first dot)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd, args[0])
		if err != nil {
			return err
		}
		stats, err := s.DomainStats()
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(stats))
		total := 0
		for _, d := range stats {
			rows = append(rows, []string{d.Domain, strconv.Itoa(d.Count)})
			total += d.Count
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderGrid([]string{"domain", "count"}, rows))
		fmt.Fprintf(cmd.OutOrStdout(), "%d entities in %d domains\n", total, len(stats))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

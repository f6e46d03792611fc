package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	viewSearch string
	viewFilter string
	viewSort   string
	viewDesc   bool
	viewLimit  int
	viewExport string
)

var viewCmd = &cobra.Command{
	Use:   "view <file>",
	Short: "Print a CSV export, optionally searched, filtered, sorted and exported",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSession(cmd, args[0])
		if err != nil {
			return err
		}
		if viewSearch != "" {
			st, err := s.Search(viewSearch)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
		}
		if viewFilter != "" {
			col, val, ok := strings.Cut(viewFilter, "=")
			if !ok {
				return fmt.Errorf("invalid --filter %q (use column=value)", viewFilter)
			}
			st, err := s.FilterByColumn(strings.ToLower(strings.TrimSpace(col)), val)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
		}
		if viewSort != "" {
			st, err := s.SortBy(strings.ToLower(strings.TrimSpace(viewSort)), viewDesc)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
		}
		limit := settings().ViewLimit
		if cmd.Flags().Changed("limit") {
			limit = viewLimit
		}
		printView(cmd.OutOrStdout(), s.View(), limit)
		if viewExport != "" {
			st, err := s.Export(viewExport)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVarP(&viewSearch, "search", "s", "", "case-insensitive search across all columns")
	viewCmd.Flags().StringVarP(&viewFilter, "filter", "f", "", "exact column filter, column=value (empty value selects unassigned)")
	viewCmd.Flags().StringVar(&viewSort, "sort", "", "sort by column")
	viewCmd.Flags().BoolVar(&viewDesc, "desc", false, "sort descending")
	viewCmd.Flags().IntVarP(&viewLimit, "limit", "n", 0, "max rows to print; 0 prints all (default from config)")
	viewCmd.Flags().StringVarP(&viewExport, "export", "o", "", "write the resulting view to this CSV path")
	viewCmd.MarkFlagsMutuallyExclusive("search", "filter")
}

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/entityloom/internal/chart"
	"github.com/KaramelBytes/entityloom/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse <file>",
	Short: "Open an interactive terminal browser on a CSV export",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		s, err := newSession()
		if err != nil {
			return err
		}
		if _, err := s.Load(args[0]); err != nil {
			return err
		}
		return tui.Run(s, tui.Options{
			SearchDelay: time.Duration(c.SearchDebounceMs) * time.Millisecond,
			Period:      c.Period(),
			ChartDir:    c.ChartDir,
			Chart:       chart.Options{Width: c.ChartWidth, Height: c.ChartHeight},
		})
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

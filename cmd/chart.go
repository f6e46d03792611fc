package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/entityloom/internal/chart"
	"github.com/KaramelBytes/entityloom/internal/energy"
)

var (
	chEntities []string
	chPeriod   string
	chCombined bool
	chKind     string
	chOut      string
	chSearch   string
	chNoRender bool
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Resample an energy export per entity and render PNG charts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		period := c.Period()
		if cmd.Flags().Changed("period") {
			p, err := energy.ParsePeriod(chPeriod)
			if err != nil {
				return err
			}
			period = p
		}
		kind, err := energy.ParseKind(chKind)
		if err != nil {
			return err
		}

		s, err := loadSession(cmd, args[0])
		if err != nil {
			return err
		}
		if chSearch != "" {
			st, err := s.Search(chSearch)
			if err != nil {
				return err
			}
			printStatus(cmd, st)
		}
		w, err := s.Energy()
		if err != nil {
			return err
		}
		selected := chEntities
		if len(selected) == 0 {
			selected = w.Entities()
		}
		if err := w.Select(selected); err != nil {
			return err
		}
		if err := w.Compute(); err != nil {
			return err
		}
		if err := w.SetCombined(chCombined); err != nil {
			return err
		}
		if err := w.Show(period); err != nil {
			return err
		}
		eff, err := w.SetKind(kind)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if w.Degraded() {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Too many buckets for a bar chart at %s resolution; drawing %s charts instead\n", period, eff)
		}
		charts := w.Charts()
		for _, ch := range charts {
			fmt.Fprintf(out, "%s: %s\n", ch.Title, ch.Summary())
		}
		if chNoRender {
			return nil
		}

		dir := c.ChartDir
		if cmd.Flags().Changed("out") {
			dir = chOut
		}
		b := chart.NewBatch(dir, charts, kind, chart.Options{Width: c.ChartWidth, Height: c.ChartHeight})
		for !b.Done() {
			res, err := b.Step()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %v\n", err)
				continue
			}
			fmt.Fprintf(out, "[%d/%d] ✓ %s (%s)\n", len(b.Results()), b.Total(), res.Path, res.Drawn)
		}
		if len(b.Results()) == 0 && b.Total() > 0 {
			return fmt.Errorf("no charts rendered")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chartCmd.Flags().StringSliceVarP(&chEntities, "entity", "e", nil, "entity id(s) to chart (default: all in view)")
	chartCmd.Flags().StringVarP(&chPeriod, "period", "p", "month", "resampling period: original|day|week|month|year (default from config)")
	chartCmd.Flags().BoolVar(&chCombined, "combined", false, "draw all selected entities on one chart")
	chartCmd.Flags().StringVarP(&chKind, "kind", "k", "line", "chart kind: bar|line")
	chartCmd.Flags().StringVarP(&chOut, "out", "o", "", "output directory for PNG files (default from config)")
	chartCmd.Flags().StringVarP(&chSearch, "search", "s", "", "narrow the view before listing entities")
	chartCmd.Flags().BoolVar(&chNoRender, "no-render", false, "print summaries only")
}

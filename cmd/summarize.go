package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/entityloom/internal/analysis"
	"github.com/KaramelBytes/entityloom/internal/csvio"
	"github.com/KaramelBytes/entityloom/internal/utils"
)

var (
	smOutput     string
	smSampleRows int
	smMaxRows    int
	smGroupBy    []string
	smOutliers   bool
	smOutlierThr float64
	smQuiet      bool
)

// expandInputs resolves glob patterns (including **) to a sorted, de-duplicated
// file list. Arguments without matches are kept when they name an existing file.
func expandInputs(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, err := doublestar.FilepathGlob(arg)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err != nil || fi.IsDir() {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <files|globs...>",
	Short: "Write a Markdown profile of one or more CSV exports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := expandInputs(args)
		if err != nil {
			return err
		}
		opt := analysis.DefaultOptions()
		if smSampleRows > 0 {
			opt.SampleRows = smSampleRows
		}
		if smMaxRows > 0 {
			opt.MaxRows = smMaxRows
		}
		opt.GroupBy = smGroupBy
		opt.Outliers = smOutliers
		if smOutlierThr > 0 {
			opt.OutlierThreshold = smOutlierThr
		}
		if smOutput != "" {
			if err := utils.EnsureDir(smOutput); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		delim := settings().DelimiterRune()
		out := cmd.OutOrStdout()

		total := len(files)
		var failed int
		for i, path := range files {
			if !smQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			ds, err := csvio.Load(path, csvio.Options{Delimiter: delim})
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipping %s: %v\n", path, err)
				continue
			}
			md := analysis.Profile(ds, opt).Markdown()
			if smOutput == "" {
				if total > 1 {
					fmt.Fprintf(out, "## %s\n\n", ds.Name)
				}
				fmt.Fprintln(out, md)
				continue
			}
			stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			dest := filepath.Join(smOutput, utils.SafeFileName(stem, fmt.Sprintf("file-%d", i+1))+".md")
			if err := utils.SafeWriteFile(dest, []byte(md)); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
			if !smQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", dest)
			}
		}
		if failed == total {
			return fmt.Errorf("all %d inputs failed to load", total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
	summarizeCmd.Flags().StringVarP(&smOutput, "output", "o", "", "directory for one Markdown file per input (default: stdout)")
	summarizeCmd.Flags().IntVar(&smSampleRows, "sample-rows", 0, "sample rows per report (default 5)")
	summarizeCmd.Flags().IntVar(&smMaxRows, "max-rows", 0, "max rows to profile per file (default 100000)")
	summarizeCmd.Flags().StringSliceVar(&smGroupBy, "group-by", nil, "column(s) to summarize numeric columns by")
	summarizeCmd.Flags().BoolVar(&smOutliers, "outliers", false, "count robust z-score outliers in numeric columns")
	summarizeCmd.Flags().Float64Var(&smOutlierThr, "outlier-threshold", 0, "robust |z| threshold (default 3.5)")
	summarizeCmd.Flags().BoolVarP(&smQuiet, "quiet", "q", false, "suppress progress output")
}

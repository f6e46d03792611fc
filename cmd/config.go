package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/entityloom/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set entityloom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "delimiter: %s\n", c.Delimiter)
		fmt.Fprintf(out, "view_limit: %d\n", c.ViewLimit)
		fmt.Fprintf(out, "search_debounce_ms: %d\n", c.SearchDebounceMs)
		fmt.Fprintf(out, "bar_max_buckets_single: %d\n", c.BarMaxBucketsSingle)
		fmt.Fprintf(out, "bar_max_buckets_combined: %d\n", c.BarMaxBucketsCombined)
		fmt.Fprintf(out, "default_period: %s\n", c.DefaultPeriod)
		fmt.Fprintf(out, "chart_width: %d\n", c.ChartWidth)
		fmt.Fprintf(out, "chart_height: %d\n", c.ChartHeight)
		fmt.Fprintf(out, "chart_dir: %s\n", c.ChartDir)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

func atoi(key, val string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %v", key, val)
	}
	return i, nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// Start from the file and env only; --delimiter must not leak into the saved file.
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		var n int
		switch key {
		case "delimiter":
			switch val {
			case ";", "semicolon":
				c.Delimiter = ";"
			case ",", "comma":
				c.Delimiter = ","
			case "auto", "":
				c.Delimiter = "auto"
			default:
				return fmt.Errorf("invalid delimiter: %s (use ';', ',' or auto)", val)
			}
		case "view_limit":
			if n, err = atoi(key, val); err != nil {
				return err
			}
			c.ViewLimit = n
		case "search_debounce_ms":
			if n, err = atoi(key, val); err != nil {
				return err
			}
			c.SearchDebounceMs = n
		case "bar_max_buckets_single":
			if n, err = atoi(key, val); err != nil {
				return err
			}
			c.BarMaxBucketsSingle = n
		case "bar_max_buckets_combined":
			if n, err = atoi(key, val); err != nil {
				return err
			}
			c.BarMaxBucketsCombined = n
		case "default_period":
			c.DefaultPeriod = strings.ToLower(val)
		case "chart_width":
			if n, err = atoi(key, val); err != nil {
				return err
			}
			c.ChartWidth = n
		case "chart_height":
			if n, err = atoi(key, val); err != nil {
				return err
			}
			c.ChartHeight = n
		case "chart_dir":
			c.ChartDir = val
		case "log_level":
			c.LogLevel = strings.ToLower(val)
		case "log_format":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

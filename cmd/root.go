package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/entityloom/internal/config"
	"github.com/KaramelBytes/entityloom/internal/logging"
	"github.com/KaramelBytes/entityloom/internal/session"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagDelimiter string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "entityloom",
	Short: "entityloom: browse, filter and chart home-automation CSV exports",
	Long: `entityloom loads entity inventory (semicolon) and energy usage (comma) CSV
exports, lets you search, filter and sort them, exports the current view in the
same dialect, and turns energy exports into resampled charts.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.entityloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "force the field delimiter: ';' or ',' (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Default()
	}
	cfg = c

	// Apply CLI overrides if provided
	if rootCmd.PersistentFlags().Changed("delimiter") {
		cfg.Delimiter = flagDelimiter
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logging.Setup(logging.Options{Level: level, Format: cfg.LogFormat})
}

// settings returns the loaded configuration, loading it on first use when
// commands run without Execute (tests).
func settings() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}

// newSession builds a session from the effective configuration.
func newSession() (*session.Session, error) {
	c := settings()
	if c.Delimiter != "" && c.Delimiter != "auto" && c.DelimiterRune() == 0 {
		return nil, fmt.Errorf("unsupported delimiter %q (use ';' or ',')", c.Delimiter)
	}
	return session.New(session.Options{
		Delimiter:  c.DelimiterRune(),
		Thresholds: c.Thresholds(),
		Logger:     slog.Default(),
	}), nil
}

// loadSession creates a session and loads path, printing the load status.
func loadSession(cmd *cobra.Command, path string) (*session.Session, error) {
	s, err := newSession()
	if err != nil {
		return nil, err
	}
	st, err := s.Load(path)
	if err != nil {
		return nil, err
	}
	printStatus(cmd, st)
	return s, nil
}

func printStatus(cmd *cobra.Command, st session.Status) {
	out := cmd.OutOrStdout()
	if st.Level == session.LevelError || st.Level == session.LevelWarn {
		out = cmd.ErrOrStderr()
	}
	fmt.Fprintln(out, st.String())
}

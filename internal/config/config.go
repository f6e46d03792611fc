package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/entityloom/internal/energy"
)

// Global configuration structure.
type Global struct {
	// Delimiter forces the field separator: auto, ";" or ",".
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`
	ViewLimit int    `mapstructure:"view_limit" yaml:"view_limit" validate:"min=0"`

	SearchDebounceMs int `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms" validate:"min=0,max=10000"`

	// Energy charts
	BarMaxBucketsSingle   int    `mapstructure:"bar_max_buckets_single" yaml:"bar_max_buckets_single" validate:"min=1"`
	BarMaxBucketsCombined int    `mapstructure:"bar_max_buckets_combined" yaml:"bar_max_buckets_combined" validate:"min=1"`
	DefaultPeriod         string `mapstructure:"default_period" yaml:"default_period" validate:"oneof=original day week month year"`
	ChartWidth            int    `mapstructure:"chart_width" yaml:"chart_width" validate:"min=200,max=8192"`
	ChartHeight           int    `mapstructure:"chart_height" yaml:"chart_height" validate:"min=150,max=8192"`
	ChartDir              string `mapstructure:"chart_dir" yaml:"chart_dir" validate:"required"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"delimiter",
	"view_limit",
	"search_debounce_ms",
	"bar_max_buckets_single",
	"bar_max_buckets_combined",
	"default_period",
	"chart_width",
	"chart_height",
	"chart_dir",
	"log_level",
	"log_format",
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		Delimiter:             "auto",
		ViewLimit:             50,
		SearchDebounceMs:      300,
		BarMaxBucketsSingle:   100,
		BarMaxBucketsCombined: 50,
		DefaultPeriod:         "month",
		ChartWidth:            1024,
		ChartHeight:           480,
		ChartDir:              ".",
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// DelimiterRune returns the forced delimiter, or 0 to auto-detect.
func (c *Global) DelimiterRune() rune {
	switch strings.TrimSpace(c.Delimiter) {
	case ";", "semicolon":
		return ';'
	case ",", "comma":
		return ','
	}
	return 0
}

// Thresholds returns the configured bar chart limits.
func (c *Global) Thresholds() energy.Thresholds {
	return energy.Thresholds{Single: c.BarMaxBucketsSingle, Combined: c.BarMaxBucketsCombined}
}

// Period parses DefaultPeriod.
func (c *Global) Period() energy.Period {
	p, err := energy.ParsePeriod(c.DefaultPeriod)
	if err != nil {
		return energy.Month
	}
	return p
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		switch strings.TrimSpace(fl.Field().String()) {
		case "", "auto", ";", ",", "semicolon", "comma":
			return true
		}
		return false
	})
	// Report yaml key names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks every field against its constraints.
func (c *Global) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %q fails %s=%s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %q fails %s", fe.Field(), fmt.Sprint(fe.Value()), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".entityloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.entityloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("ENTITYLOOM")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("delimiter", d.Delimiter)
	v.SetDefault("view_limit", d.ViewLimit)
	v.SetDefault("search_debounce_ms", d.SearchDebounceMs)
	v.SetDefault("bar_max_buckets_single", d.BarMaxBucketsSingle)
	v.SetDefault("bar_max_buckets_combined", d.BarMaxBucketsCombined)
	v.SetDefault("default_period", d.DefaultPeriod)
	v.SetDefault("chart_width", d.ChartWidth)
	v.SetDefault("chart_height", d.ChartHeight)
	v.SetDefault("chart_dir", d.ChartDir)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

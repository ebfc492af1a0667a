// Package config parses tableconv settings from the environment and flags.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/leengari/tableconv/internal/domain/errors"
)

// Config holds the conversion settings. Environment values act as defaults;
// flags override them.
type Config struct {
	SourcePath     string   `env:"TABLECONV_SOURCE" envDefault:"ad2.parquet"`
	OutputPath     string   `env:"TABLECONV_OUTPUT" envDefault:"Set1_subset.csv"`
	FullOutputPath string   `env:"TABLECONV_FULL_OUTPUT"`
	Fields         []string `env:"TABLECONV_FIELDS" envDefault:"ltp" envSeparator:","`
	MaxColumns     int      `env:"TABLECONV_MAX_COLUMNS" envDefault:"100"`
	SampleSize     int      `env:"TABLECONV_SAMPLE_SIZE" envDefault:"5"`
	Inspect        bool     `env:"TABLECONV_INSPECT" envDefault:"true"`
	LogLevel       string   `env:"TABLECONV_LOG_LEVEL" envDefault:"info"`
	SeqURL         string   `env:"TABLECONV_SEQ_URL"`
	OTelEndpoint   string   `env:"TABLECONV_OTEL_ENDPOINT"`
}

// Parse loads environment defaults into a Config and then applies flags.
func Parse(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.SourcePath, "source", cfg.SourcePath, "Parquet file to read")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "CSV file for the selected subset (.gz/.zst to compress)")
	fs.StringVar(&cfg.FullOutputPath, "full-output", cfg.FullOutputPath, "Optional CSV file for every flattened column")
	fs.Func("fields", "Comma-separated level-0 field names to keep (default "+strings.Join(cfg.Fields, ",")+")", func(v string) error {
		cfg.Fields = SplitFields(v)
		return nil
	})
	fs.IntVar(&cfg.MaxColumns, "max-columns", cfg.MaxColumns, "Maximum number of columns in the subset")
	fs.IntVar(&cfg.SampleSize, "sample", cfg.SampleSize, "Number of labels and rows shown when inspecting")
	fs.BoolVar(&cfg.Inspect, "inspect", cfg.Inspect, "Print a summary of the loaded table")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")
	fs.StringVar(&cfg.SeqURL, "seq-url", cfg.SeqURL, "Seq server URL; empty disables Seq logging")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", cfg.OTelEndpoint, "OTLP/HTTP trace endpoint; empty disables tracing")

	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Fields = SplitFields(strings.Join(cfg.Fields, ","))
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if strings.TrimSpace(c.SourcePath) == "" {
		return errors.NewConfigError("source", "path is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errors.NewConfigError("output", "path is required")
	}
	if len(c.Fields) == 0 {
		return errors.NewConfigError("fields", "at least one field name is required")
	}
	if c.MaxColumns < 0 {
		return errors.NewConfigError("max_columns", fmt.Sprintf("must not be negative, got %d", c.MaxColumns))
	}
	if c.SampleSize < 0 {
		return errors.NewConfigError("sample", fmt.Sprintf("must not be negative, got %d", c.SampleSize))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SplitFields splits a comma-separated list, dropping blanks
func SplitFields(v string) []string {
	var fields []string
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

// ParseLevel maps a level name to a slog.Level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, errors.NewConfigError("log_level", fmt.Sprintf("unknown level %q", name))
	}
	return level, nil
}

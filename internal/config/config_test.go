package config

import (
	"flag"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/tableconv/internal/domain/errors"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(flag.NewFlagSet("tableconv", flag.ContinueOnError), nil)
	require.NoError(t, err)

	assert.Equal(t, "ad2.parquet", cfg.SourcePath)
	assert.Equal(t, "Set1_subset.csv", cfg.OutputPath)
	assert.Empty(t, cfg.FullOutputPath)
	assert.Equal(t, []string{"ltp"}, cfg.Fields)
	assert.Equal(t, 100, cfg.MaxColumns)
	assert.Equal(t, 5, cfg.SampleSize)
	assert.True(t, cfg.Inspect)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParseEnvOverrides(t *testing.T) {
	t.Setenv("TABLECONV_SOURCE", "prices.parquet")
	t.Setenv("TABLECONV_FIELDS", "ltp, vol")
	t.Setenv("TABLECONV_MAX_COLUMNS", "20")
	t.Setenv("TABLECONV_INSPECT", "false")

	cfg, err := Parse(flag.NewFlagSet("tableconv", flag.ContinueOnError), nil)
	require.NoError(t, err)

	assert.Equal(t, "prices.parquet", cfg.SourcePath)
	assert.Equal(t, []string{"ltp", "vol"}, cfg.Fields)
	assert.Equal(t, 20, cfg.MaxColumns)
	assert.False(t, cfg.Inspect)
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TABLECONV_MAX_COLUMNS", "20")
	t.Setenv("TABLECONV_FIELDS", "vol")

	cfg, err := Parse(flag.NewFlagSet("tableconv", flag.ContinueOnError),
		[]string{"-max-columns", "7", "-fields", "ltp,,bid", "-output", "out.csv.gz", "-inspect=false"})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.MaxColumns)
	assert.Equal(t, []string{"ltp", "bid"}, cfg.Fields)
	assert.Equal(t, "out.csv.gz", cfg.OutputPath)
	assert.False(t, cfg.Inspect)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"negative max columns", []string{"-max-columns", "-1"}},
		{"empty fields", []string{"-fields", " , "}},
		{"empty output", []string{"-output", ""}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"negative sample", []string{"-sample", "-3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(flag.NewFlagSet("tableconv", flag.ContinueOnError), tt.args)
			assert.ErrorIs(t, err, errors.ErrConfig)
		})
	}
}

func TestParseBadEnvValue(t *testing.T) {
	t.Setenv("TABLECONV_MAX_COLUMNS", "many")

	_, err := Parse(flag.NewFlagSet("tableconv", flag.ContinueOnError), nil)
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

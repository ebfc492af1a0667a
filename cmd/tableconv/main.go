package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leengari/tableconv/internal/config"
	"github.com/leengari/tableconv/internal/converter"
	"github.com/leengari/tableconv/internal/logging"
	"github.com/leengari/tableconv/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("tableconv", flag.ContinueOnError)
	cfg, err := config.Parse(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "tableconv: %v\n", err)
		return 2
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger, closeFn := logging.SetupLogger(logging.Options{
		Level:  level,
		SeqURL: cfg.SeqURL,
	})
	defer closeFn()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.OTelEndpoint, telemetry.ServiceName)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			logger.Warn("trace shutdown failed", "error", err)
		}
	}()

	conv := converter.New(converter.Options{
		SourcePath:     cfg.SourcePath,
		OutputPath:     cfg.OutputPath,
		FullOutputPath: cfg.FullOutputPath,
		Fields:         cfg.Fields,
		MaxColumns:     cfg.MaxColumns,
		SampleSize:     cfg.SampleSize,
		Inspect:        cfg.Inspect,
	}, logger, os.Stdout)
	conv.AddObserver(converter.NewLoggingObserver(logger))

	if _, err := conv.Run(ctx); err != nil {
		logger.Error("conversion failed", "error", err)
		return 1
	}
	return 0
}

// Package converter runs the parquet to CSV conversion pipeline.
package converter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/query/operations"
	"github.com/leengari/tableconv/internal/storage/loader"
	"github.com/leengari/tableconv/internal/storage/writer"
	"github.com/leengari/tableconv/internal/telemetry"
)

// Options describes one conversion run
type Options struct {
	SourcePath     string
	OutputPath     string
	FullOutputPath string // empty skips the full export
	Fields         []string
	MaxColumns     int
	SampleSize     int
	Inspect        bool
}

// Result holds the tables produced by a run
type Result struct {
	RunID  string
	Source *schema.Table // as loaded, hierarchical keys
	Flat   *schema.Table // every column, flattened
	Subset *schema.Table // selected columns, flattened
}

// Converter loads a hierarchical table, flattens it and exports a subset
type Converter struct {
	opts   Options
	logger *slog.Logger
	out    io.Writer
	tracer trace.Tracer

	runID     string
	observers []Observer
}

// New creates a converter. Inspection output goes to out.
func New(opts Options, logger *slog.Logger, out io.Writer) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	if out == nil {
		out = io.Discard
	}
	return &Converter{
		opts:   opts,
		logger: logger,
		out:    out,
		tracer: telemetry.Tracer(),
	}
}

// Run executes Load, Inspect, FlattenAll, SelectSubset and WriteCSV in order.
// The context is checked between stages.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()
	c.runID = runID
	logger := c.logger.With("run_id", runID)

	ctx, span := c.tracer.Start(ctx, "convert", trace.WithAttributes(
		attribute.String("tableconv.run_id", runID),
		attribute.String("tableconv.source", c.opts.SourcePath),
		attribute.String("tableconv.output", c.opts.OutputPath),
	))
	defer span.End()

	res, err := c.run(ctx, logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	res.RunID = runID

	rows, cols := res.Subset.Shape()
	logger.Info("conversion complete",
		"source", c.opts.SourcePath,
		"output", c.opts.OutputPath,
		"rows", rows,
		"columns", cols,
	)
	return res, nil
}

func (c *Converter) run(ctx context.Context, logger *slog.Logger) (*Result, error) {
	res := &Result{}

	err := c.stage(ctx, "load", func(context.Context) error {
		t, err := loader.LoadTable(c.opts.SourcePath, logger)
		res.Source = t
		return err
	})
	if err != nil {
		return nil, err
	}

	if c.opts.Inspect {
		if err := c.stage(ctx, "inspect", func(context.Context) error {
			return Inspect(c.out, res.Source, c.opts.SampleSize)
		}); err != nil {
			return nil, err
		}
	}

	err = c.stage(ctx, "flatten", func(context.Context) error {
		t, err := operations.FlattenColumns(res.Source)
		res.Flat = t
		return err
	})
	if err != nil {
		return nil, err
	}
	if dups := res.Flat.DuplicateColumnNames(); len(dups) > 0 {
		logger.Warn("flattened column names collide",
			"count", len(dups),
			"names", strings.Join(dups, ","),
		)
	}

	if c.opts.FullOutputPath != "" {
		if err := c.stage(ctx, "write_full", func(context.Context) error {
			return writer.WriteCSV(res.Flat, c.opts.FullOutputPath, logger)
		}); err != nil {
			return nil, err
		}
	}

	err = c.stage(ctx, "select", func(context.Context) error {
		t, err := operations.SelectSubset(res.Source, c.opts.MaxColumns, c.opts.Fields...)
		res.Subset = t
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Subset.NumColumns() == 0 {
		logger.Warn("no columns matched the field allow-list",
			"fields", strings.Join(c.opts.Fields, ","),
		)
	}

	err = c.stage(ctx, "write", func(context.Context) error {
		return writer.WriteCSV(res.Subset, c.opts.OutputPath, logger)
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// stage runs fn inside a child span unless ctx is already done
func (c *Converter) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ctx, span := c.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	c.notify(Event{Type: EventStageStart, RunID: c.runID, Stage: name, Timestamp: start})

	err := fn(ctx)
	c.notify(Event{
		Type:      EventStageEnd,
		RunID:     c.runID,
		Stage:     name,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

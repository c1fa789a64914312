package operations

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"datacli/internal/dataprocessing"
	"datacli/internal/errors"
	"datacli/internal/files"
	"datacli/internal/infrastructure"
)

// Runner sequences Loader, Analyzer and Writer for one or more inputs.
// A Runner is safe for concurrent use; every run owns its dataset.
type Runner struct {
	logger  *slog.Logger
	opts    Options
	loader  *dataprocessing.Loader
	writer  *dataprocessing.Writer
	metrics *infrastructure.PipelineMetrics
	tracer  trace.Tracer
}

// NewRunner creates a runner. A nil logger uses slog.Default and a nil
// metrics collector disables metrics.
func NewRunner(logger *slog.Logger, opts Options, metrics *infrastructure.PipelineMetrics) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Mode == "" {
		opts.Mode = dataprocessing.ModeAuto
	}
	return &Runner{
		logger:  infrastructure.WithComponent(logger, "runner"),
		opts:    opts,
		loader:  dataprocessing.NewLoader(opts.Loader),
		writer:  dataprocessing.NewWriter(opts.Writer),
		metrics: metrics,
		tracer:  noop.NewTracerProvider().Tracer(infrastructure.TracerName),
	}
}

// SetTracerProvider routes run and stage spans to tp. Call it before the
// runner is shared between goroutines.
func (r *Runner) SetTracerProvider(tp trace.TracerProvider) {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	r.tracer = tp.Tracer(infrastructure.TracerName)
}

// Run loads input, analyzes it and writes the results into outputDir. The
// returned Result is never nil and carries the partial state on failure.
func (r *Runner) Run(ctx context.Context, input, outputDir string) (*Result, error) {
	return r.run(ctx, input, outputDir, true)
}

// Analyze loads and analyzes input without writing anything
func (r *Runner) Analyze(ctx context.Context, input string) (*Result, error) {
	return r.run(ctx, input, "", false)
}

// RunAll processes inputs with at most Workers runs in flight. A single
// input writes into outputDir itself; several inputs each get their own
// sub-directory. The first failure cancels runs that have not finished.
func (r *Runner) RunAll(ctx context.Context, inputs []string, outputDir string) ([]*Result, error) {
	if len(inputs) == 0 {
		return nil, errors.NewAppValidationError("no input files")
	}

	dirs := []string{outputDir}
	if len(inputs) > 1 {
		dirs = files.OutputDirs(outputDir, inputs)
	}

	results := make([]*Result, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, input := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = &Result{Input: input, OutputDir: dirs[i], Status: StatusCancelled, Err: err}
				return err
			}
			res, err := r.Run(gctx, input, dirs[i])
			results[i] = res
			return err
		})
	}

	return results, g.Wait()
}

func (r *Runner) run(ctx context.Context, input, outputDir string, write bool) (*Result, error) {
	mode := dataprocessing.ResolveMode(input, r.opts.Mode)
	ctx, span := r.tracer.Start(ctx, "datacli.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("input", input),
			attribute.String("mode", string(mode)),
			attribute.String("output_dir", outputDir),
			attribute.Bool("write", write),
		))
	defer span.End()

	// log lines and spans share one trace id when tracing is on
	if infrastructure.GetTraceID(ctx) == "" {
		if id := infrastructure.TraceIDFromSpan(ctx); id != "" {
			ctx = infrastructure.WithTraceID(ctx, id)
		}
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	res := &Result{
		TraceID:   infrastructure.GetTraceID(ctx),
		Input:     input,
		OutputDir: outputDir,
	}
	logger := r.logger.With(slog.String("input", input))

	start := time.Now()
	r.logRunStart(ctx, logger, outputDir)

	err := r.execute(ctx, logger, res, write)
	res.Duration = time.Since(start)

	switch {
	case err == nil:
		res.Status = StatusCompleted
		r.logRunComplete(ctx, logger, res)
	case stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded):
		res.Status = StatusCancelled
		res.Err = err
		r.logRunError(ctx, logger, res)
	default:
		res.Status = StatusFailed
		res.Err = err
		r.logRunError(ctx, logger, res)
	}

	span.SetAttributes(
		attribute.String("status", string(res.Status)),
		attribute.Int("files_written", len(res.Files)),
	)
	setSpanStatus(span, err)

	if r.metrics != nil {
		r.metrics.Runs.WithLabelValues(string(mode), string(res.Status)).Inc()
	}

	return res, err
}

func (r *Runner) execute(ctx context.Context, logger *slog.Logger, res *Result, write bool) error {
	var ds dataprocessing.Dataset
	err := r.stage(ctx, logger, res, StageLoad, func() error {
		var err error
		ds, err = r.loader.Load(res.Input, r.opts.Mode)
		return err
	})
	if err != nil {
		return err
	}
	res.Kind = ds.Kind()
	r.recordLoaded(ds)

	err = r.stage(ctx, logger, res, StageAnalyze, func() error {
		var err error
		res.Report, err = dataprocessing.Analyze(ds)
		return err
	})
	if err != nil || !write {
		return err
	}

	return r.stage(ctx, logger, res, StageWrite, func() error {
		var err error
		res.Files, err = r.writer.Write(res.OutputDir, res.Report, ds)
		if r.metrics != nil {
			r.metrics.FilesWritten.Add(float64(len(res.Files)))
		}
		return err
	})
}

// stage runs fn unless ctx is already done, timing and logging it
func (r *Runner) stage(ctx context.Context, logger *slog.Logger, res *Result, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s stage not started: %w", name, err)
	}

	ctx, span := r.tracer.Start(ctx, "datacli.stage."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("stage", name)))
	defer span.End()

	r.logStageStart(ctx, logger, name)
	start := time.Now()
	err := fn()
	res.addStage(name, start)
	r.metrics.ObserveStage(name, start)
	setSpanStatus(span, err)

	if err != nil {
		r.logStageError(ctx, logger, name, err)
		return fmt.Errorf("%s %s: %w", name, res.Input, err)
	}
	r.logStageComplete(ctx, logger, name, time.Since(start))
	return nil
}

// setSpanStatus records err on span, or marks it Ok
func setSpanStatus(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errType := errors.TypeOf(err); errType != "" {
			span.SetAttributes(attribute.String("error.type", string(errType)))
		}
		return
	}
	span.SetStatus(codes.Ok, "")
}

func (r *Runner) recordLoaded(ds dataprocessing.Dataset) {
	if r.metrics == nil {
		return
	}
	switch d := ds.(type) {
	case *dataprocessing.Table:
		r.metrics.RowsLoaded.Add(float64(d.Len()))
	case *dataprocessing.Text:
		r.metrics.LinesLoaded.Add(float64(len(d.Lines)))
	}
}
